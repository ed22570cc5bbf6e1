package model

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestParseNodeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    NodeType
		wantErr bool
	}{
		{in: "lyrics", want: NodeLyrics},
		{in: "  Genre ", want: NodeGenre},
		{in: "OUTPUT", want: NodeOutput},
		{in: "drums", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseNodeType(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseNodeType(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseNodeType(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseNodeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPayload_FallsBackToTypeDefault(t *testing.T) {
	n := Node{ID: "node-a", Type: NodeGenre}
	d, ok := n.Payload().(GenreData)
	if !ok {
		t.Fatalf("expected GenreData; got %T", n.Payload())
	}
	if d.Genres == nil || len(d.Genres) != 0 {
		t.Fatalf("expected empty non-nil genres; got %#v", d.Genres)
	}

	// Wrong variant for the type reads as the default too.
	n.Data = LyricsData{Topic: "x"}
	if _, ok := n.Payload().(GenreData); !ok {
		t.Fatalf("expected GenreData for mismatched variant; got %T", n.Payload())
	}
}

func TestApply_MergesOnlyGivenFields(t *testing.T) {
	d := LyricsData{Topic: "Stars", Mood: "Calm", Lyrics: "la la"}
	out, applied := Apply(d, NodePatch{Mood: strPtr("Angry")})
	got := out.(LyricsData)
	if got.Topic != "Stars" || got.Lyrics != "la la" {
		t.Fatalf("unspecified fields changed: %#v", got)
	}
	if got.Mood != "Angry" {
		t.Fatalf("expected mood Angry; got %q", got.Mood)
	}
	if len(applied) != 1 || applied[0] != "mood" {
		t.Fatalf("expected applied=[mood]; got %v", applied)
	}
}

func TestApply_IgnoresFieldsOfOtherVariants(t *testing.T) {
	d := ContextData{Prompt: "80s chase"}
	out, applied := Apply(d, NodePatch{Topic: strPtr("ignored")})
	if out.(ContextData).Prompt != "80s chase" {
		t.Fatalf("prompt changed: %#v", out)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing applied; got %v", applied)
	}
}

func TestApply_ListPatchDoesNotAlias(t *testing.T) {
	xs := []string{"Synthwave"}
	out, _ := Apply(GenreData{}, NodePatch{Genres: &xs})
	xs[0] = "mutated"
	if got := out.(GenreData).Genres[0]; got != "Synthwave" {
		t.Fatalf("patch slice aliased into node data: %q", got)
	}
}

func TestParsePatchField(t *testing.T) {
	p, err := ParsePatchField("genres", " Synthwave, ,Cyberpunk ")
	if err != nil {
		t.Fatalf("ParsePatchField: %v", err)
	}
	if p.Genres == nil || len(*p.Genres) != 2 || (*p.Genres)[1] != "Cyberpunk" {
		t.Fatalf("unexpected genres: %#v", p.Genres)
	}
	if _, err := ParsePatchField("tempo", "120"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestNodeJSON_MissingDataDecodesToDefaults(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(`{"id":"node-1","type":"lyrics","name":"Vox","step":2}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := n.Data.(LyricsData); !ok {
		t.Fatalf("expected LyricsData default; got %T", n.Data)
	}

	b, err := json.Marshal(Node{ID: "node-2", Type: NodeEffect, Name: "FX", Step: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(b), `{"id":"node-2","type":"effect","name":"FX","step":1,"data":{"effects":[]}}`; got != want {
		t.Fatalf("marshal:\n got %s\nwant %s", got, want)
	}
}

func TestImageSizeNextCycles(t *testing.T) {
	if got := ImageSize1K.Next().Next().Next(); got != ImageSize1K {
		t.Fatalf("expected cycle back to 1K; got %q", got)
	}
	if _, err := ParseImageSize("8k"); err == nil {
		t.Fatalf("expected error for 8k")
	}
	if got, _ := ParseImageSize("2k"); got != ImageSize2K {
		t.Fatalf("expected 2K; got %q", got)
	}
}

func TestAttachmentFileExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mime string
		want string
	}{
		{"image/png", ".png"},
		{"image/JPEG", ".jpg"},
		{"image/jpg", ".jpg"},
		{"image/webp", ".webp"},
		{"", ".png"},
		{"application/octet-stream", ".png"},
	}
	for _, tc := range tests {
		if got := (Attachment{Kind: AttachmentImage, MIMEType: tc.mime}).FileExt(); got != tc.want {
			t.Fatalf("FileExt(%q)=%q want %q", tc.mime, got, tc.want)
		}
	}
}
