package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
	"github.com/google/go-cmp/cmp"
)

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	t.Run("space aliases", func(t *testing.T) {
		keys, help := parseBindingKeys("space", ".")
		if len(keys) != 2 || keys[0] != " " || keys[1] != "space" {
			t.Fatalf("unexpected parsed space keys %#v", keys)
		}
		if help != "space" {
			t.Fatalf("unexpected space help text %q", help)
		}
	})

	t.Run("uppercase rune includes shift alias", func(t *testing.T) {
		keys, help := parseBindingKeys("Z", "z")
		if len(keys) != 2 || keys[0] != "Z" || keys[1] != "shift+z" {
			t.Fatalf("unexpected uppercase parsed keys %#v", keys)
		}
		if help != "Z" {
			t.Fatalf("unexpected uppercase help text %q", help)
		}
	})

	t.Run("multi rune lowercases key matcher", func(t *testing.T) {
		keys, help := parseBindingKeys("Ctrl+R", "r")
		if len(keys) != 1 || keys[0] != "ctrl+r" {
			t.Fatalf("unexpected multi-rune parsed keys %#v", keys)
		}
		if help != "Ctrl+R" {
			t.Fatalf("unexpected multi-rune help text %q", help)
		}
	})

	t.Run("blank uses fallback", func(t *testing.T) {
		keys, help := parseBindingKeys("", "x")
		if len(keys) != 1 || keys[0] != "x" {
			t.Fatalf("unexpected fallback parsed keys %#v", keys)
		}
		if help != "x" {
			t.Fatalf("unexpected fallback help text %q", help)
		}
	})
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "old"))
	configureBinding(&b, "v", "m", "cycle view mode")
	keys := b.Keys()
	if len(keys) != 1 || keys[0] != "v" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "v" || b.Help().Desc != "cycle view mode" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{
		CycleMode:   "M",
		ToggleSort:  "o",
		ToggleTheme: "",
		JumpStart:   "home",
		JumpEnd:     "End",
		Info:        "space",
		Yank:        "Y",
	})

	tests := []struct {
		name    string
		binding key.Binding
		want    []string
	}{
		{name: "cycle mode", binding: k.cycleMode, want: []string{"M", "shift+m"}},
		{name: "toggle sort", binding: k.toggleSort, want: []string{"o"}},
		{name: "toggle theme keeps default", binding: k.toggleTheme, want: []string{"t"}},
		{name: "jump start", binding: k.jumpStart, want: []string{"home"}},
		{name: "jump end", binding: k.jumpEnd, want: []string{"end"}},
		{name: "info", binding: k.info, want: []string{" ", "space"}},
		{name: "yank", binding: k.yank, want: []string{"Y", "shift+y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.binding.Keys()); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestKeyMapDefaultsIncludeGestureKeys verifies gesture key defaults.
func TestKeyMapDefaultsIncludeGestureKeys(t *testing.T) {
	k := newKeyMap()
	if got := k.grab.Keys(); len(got) != 1 || got[0] != "g" {
		t.Fatalf("unexpected grab keys %#v", got)
	}
	gotStart := k.resizeStart.Keys()
	if len(gotStart) != 2 || gotStart[0] != "E" || gotStart[1] != "shift+e" {
		t.Fatalf("unexpected resize start keys %#v", gotStart)
	}
	if got := bindingList(k.gestureHelp()).FullHelp(); len(got) != 1 || len(got[0]) != 6 {
		t.Fatalf("unexpected gesture help %#v", got)
	}
}
