package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	selectUp    key.Binding
	selectDown  key.Binding
	scrollLeft  key.Binding
	scrollRight key.Binding
	pageLeft    key.Binding
	pageRight   key.Binding
	grab        key.Binding
	resizeEnd   key.Binding
	resizeStart key.Binding
	commit      key.Binding
	cancel      key.Binding
	jumpStart   key.Binding
	jumpEnd     key.Binding
	cycleMode   key.Binding
	toggleSort  key.Binding
	toggleTheme key.Binding
	info        key.Binding
	yank        key.Binding
	addBlock    key.Binding
	rename      key.Binding
	link        key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload config")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		selectUp:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "block up")),
		selectDown:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "block down")),
		scrollLeft:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "earlier")),
		scrollRight: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "later")),
		pageLeft:    key.NewBinding(key.WithKeys("H", "shift+h"), key.WithHelp("H", "page earlier")),
		pageRight:   key.NewBinding(key.WithKeys("L", "shift+l"), key.WithHelp("L", "page later")),
		grab:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "drag block")),
		resizeEnd:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "resize end")),
		resizeStart: key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "resize start")),
		commit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		jumpStart:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "jump to start")),
		jumpEnd:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "jump to end")),
		cycleMode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cycle view mode")),
		toggleSort:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "list/group")),
		toggleTheme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		info:        key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "block info")),
		yank:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy block")),
		addBlock:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new block")),
		rename:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "rename")),
		link:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "link end→start")),
	}
}

// applyConfig overrides configurable bindings. Blank values keep the current keys.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.cycleMode, cfg.CycleMode, "m", "cycle view mode")
	configureBinding(&k.toggleSort, cfg.ToggleSort, "s", "list/group")
	configureBinding(&k.toggleTheme, cfg.ToggleTheme, "t", "theme")
	configureBinding(&k.jumpStart, cfg.JumpStart, "[", "jump to start")
	configureBinding(&k.jumpEnd, cfg.JumpEnd, "]", "jump to end")
	configureBinding(&k.info, cfg.Info, "i", "block info")
	configureBinding(&k.yank, cfg.Yank, "y", "copy block")
}

// configureBinding rebinds b to raw, or to fallback when raw is blank.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys expands one configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if value == " " || strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.selectDown, k.grab, k.resizeEnd, k.jumpStart, k.jumpEnd, k.cycleMode, k.info, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.selectUp, k.selectDown, k.scrollLeft, k.scrollRight, k.pageLeft, k.pageRight, k.jumpStart, k.jumpEnd},
		{k.grab, k.resizeEnd, k.resizeStart, k.commit, k.cancel, k.addBlock, k.rename, k.link},
		{k.cycleMode, k.toggleSort, k.toggleTheme, k.info, k.yank, k.reload, k.toggleHelp, k.quit},
	}
}

// gestureHelp lists the bindings active while a drag or resize is pending.
func (k keyMap) gestureHelp() []key.Binding {
	return []key.Binding{k.scrollLeft, k.scrollRight, k.selectUp, k.selectDown, k.commit, k.cancel}
}

// bindingList shows a fixed set of bindings in the help bubble.
type bindingList []key.Binding

func (b bindingList) ShortHelp() []key.Binding  { return b }
func (b bindingList) FullHelp() [][]key.Binding { return [][]key.Binding{b} }
