// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import "testing"

func TestSalvageJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "json fence",
			in:   "Here you go:\n```json\n{\"a\": 1}\n```\n",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "untagged fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "object inside prose",
			in:   `The result is {"a": {"b": 2}} as requested.`,
			want: `{"a": {"b": 2}}`,
			ok:   true,
		},
		{
			name: "no json at all",
			in:   "I could not process this document.",
			ok:   false,
		},
		{
			name: "broken json",
			in:   `{"a": `,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SalvageJSON(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenAIClientRejectsPDFs(t *testing.T) {
	c := &OpenAIClient{}
	if c.SupportsAttachments() {
		t.Error("openai backend must not claim attachment support")
	}
}
