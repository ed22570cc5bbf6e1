package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"
	"daiw-cli/internal/store"
)

type RenderOptions struct {
	IncludeChat    bool
	IncludeContext bool
	// ImageLinks maps a chat message id to the relative path of its saved image.
	ImageLinks map[string]string
}

// RenderSessionMarkdown renders the project sheet: meta, the node chain and
// optionally the assembled assistant context and the conversation.
func RenderSessionMarkdown(snap store.Snapshot, chat []model.ChatMessage, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	name := strings.TrimSpace(snap.Meta.Name)
	if name == "" {
		name = "Untitled project"
	}
	writeLn("# " + name)
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn(fmt.Sprintf("- BPM: %d", snap.Meta.BPM))
	if k := strings.TrimSpace(snap.Meta.Key); k != "" {
		writeLn("- Key: " + k)
	}
	if g := strings.TrimSpace(snap.Meta.Genre); g != "" {
		writeLn("- Genre: " + g)
	}

	writeLn("")
	writeLn("## Chain")
	for _, n := range snap.Nodes {
		writeLn("")
		title := fmt.Sprintf("### %d. [%s] %s", n.Step, n.Type.Label(), strings.TrimSpace(n.Name))
		if n.ID == snap.SelectedID {
			title += " (focused)"
		}
		writeLn(title)
		writeNodeFields(writeLn, n)
	}

	if opt.IncludeContext {
		writeLn("")
		writeLn("## Assistant context")
		writeLn("")
		writeLn("```text")
		writeLn(assistant.BuildContext(snap.Nodes, snap.SelectedID, snap.Meta))
		writeLn("```")
	}

	if opt.IncludeChat && len(chat) > 0 {
		writeLn("")
		writeLn("## Conversation")
		for _, msg := range chat {
			writeLn("")
			writeLn(fmt.Sprintf("### %s (%s)", speaker(msg.Role), formatTime(msg.Timestamp)))
			writeLn("")
			writeLn(strings.TrimSpace(msg.Text))
			for _, att := range msg.Attachments {
				if att.Kind != model.AttachmentImage {
					continue
				}
				writeLn("")
				if link := opt.ImageLinks[msg.ID]; link != "" {
					writeLn("![Cover art](" + link + ")")
				} else {
					writeLn(fmt.Sprintf("_Cover art (%s) not exported._", att.MIMEType))
				}
			}
		}
	}

	return buf.String()
}

func writeNodeFields(writeLn func(string), n model.Node) {
	fields := model.FieldNames(n.Type)
	if len(fields) == 0 {
		return
	}
	writeLn("")
	data := n.Payload()
	for _, f := range fields {
		v := strings.TrimSpace(model.FieldText(data, f))
		if v == "" {
			continue
		}
		label := strings.ToUpper(f[:1]) + f[1:]
		if f == "lyrics" || f == "prompt" {
			writeLn("- " + label + ":")
			writeLn("")
			for _, ln := range strings.Split(v, "\n") {
				writeLn("  > " + ln)
			}
			continue
		}
		writeLn("- " + label + ": " + v)
	}
}

func speaker(r model.Role) string {
	if r == model.RoleUser {
		return "You"
	}
	return "DAiW"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
