package store

import "daiw-cli/internal/model"

// WelcomeMessage opens every assistant conversation.
const WelcomeMessage = "I'm your DAiW Creative Assistant. I can help generate prompts, analyze your arrangement, or create cover art."

// Seed returns a session holding the starter project.
func Seed(meta model.ProjectMeta) *Session {
	s := NewSession(meta)
	starter := []struct {
		typ  model.NodeType
		name string
		data model.NodeData
	}{
		{model.NodeContext, "Base Context", model.ContextData{Prompt: "80s chase scene, neon lights"}},
		{model.NodeGenre, "Genre Mixer", model.GenreData{Genres: []string{"Synthwave", "Cyberpunk"}}},
		{model.NodeInstrument, "Instruments", model.InstrumentData{Instruments: []string{"Analog Bass", "Arp Synths"}}},
		{model.NodeEffect, "FX Chain", model.EffectData{Effects: []string{"Reverb", "Distortion"}}},
		{model.NodeOutput, "Final Prompt", model.OutputData{}},
	}
	for _, st := range starter {
		s.Nodes = append(s.Nodes, model.Node{
			ID:   s.NewNodeID(),
			Type: st.typ,
			Name: st.name,
			Data: st.data,
		})
	}
	s.Renumber()
	s.AppendMessage(model.RoleModel, WelcomeMessage, nil)
	return s
}
