package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectNodeLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"daiw"},
			want: []string{"daiw"},
		},
		{
			name: "step first token",
			in:   []string{"daiw", "2"},
			want: []string{"daiw", "nodes", "show", "2"},
		},
		{
			name: "node id first token",
			in:   []string{"daiw", "node-abc12345"},
			want: []string{"daiw", "nodes", "show", "node-abc12345"},
		},
		{
			name: "after value flag",
			in:   []string{"daiw", "--add", "lyrics", "6"},
			want: []string{"daiw", "--add", "lyrics", "nodes", "show", "6"},
		},
		{
			name: "after equals flag",
			in:   []string{"daiw", "--format=edn", "3"},
			want: []string{"daiw", "--format=edn", "nodes", "show", "3"},
		},
		{
			name: "after bool flag",
			in:   []string{"daiw", "--pretty", "1"},
			want: []string{"daiw", "--pretty", "nodes", "show", "1"},
		},
		{
			name: "after double dash",
			in:   []string{"daiw", "--", "4"},
			want: []string{"daiw", "--", "nodes", "show", "4"},
		},
		{
			name: "zero is not a step",
			in:   []string{"daiw", "0"},
			want: []string{"daiw", "0"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"daiw", "nodes", "show", "2"},
			want: []string{"daiw", "nodes", "show", "2"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"daiw", "wat"},
			want: []string{"daiw", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectNodeLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectNodeLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
