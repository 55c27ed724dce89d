package shared

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestContains(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(Contains([]string{"a", "b"}, "a")).To(gomega.BeTrue())
	g.Expect(Contains([]string{"a", "b"}, "c")).To(gomega.BeFalse())
	g.Expect(Contains(nil, "a")).To(gomega.BeFalse())
}

func TestHasPrefixIn(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		prefixes []string
		want     bool
	}{
		{name: "matching prefix", s: "sso.issuer", prefixes: []string{"sso."}, want: true},
		{name: "no matching prefix", s: "capability.foo", prefixes: []string{"sso."}, want: false},
		{name: "empty prefix list", s: "sso.issuer", prefixes: nil, want: false},
		{name: "prefix longer than string", s: "ss", prefixes: []string{"sso."}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			g.Expect(HasPrefixIn(tt.s, tt.prefixes)).To(gomega.Equal(tt.want))
		})
	}
}

func TestSortedKeys(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(SortedKeys(map[string]string{"b": "2", "a": "1", "c": "3"})).
		To(gomega.Equal([]string{"a", "b", "c"}))
	g.Expect(SortedKeys(nil)).To(gomega.BeEmpty())
}

func TestDiffAsJson(t *testing.T) {
	g := gomega.NewWithT(t)

	diff := DiffAsJson(
		map[string]string{"label": "disabled"},
		map[string]string{"label": "enabled"},
		"current", "desired")
	g.Expect(diff).To(gomega.ContainSubstring("--- current"))
	g.Expect(diff).To(gomega.ContainSubstring("+++ desired"))
	g.Expect(diff).To(gomega.ContainSubstring(`-  "label": "disabled"`))
	g.Expect(diff).To(gomega.ContainSubstring(`+  "label": "enabled"`))
}
