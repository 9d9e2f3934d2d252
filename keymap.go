package main

import (
	"fmt"
	"slices"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type KeyHandler func(key string) bool

type keyBinding struct {
	help    string
	handler KeyHandler
}

// KeyMap maps key names as produced by KeyName to handlers.
type KeyMap map[string]keyBinding

func CreateKeyMap() KeyMap {
	return KeyMap{}
}

func (km KeyMap) HandleKey(key string) bool {
	if b, ok := km[key]; ok {
		return b.handler(key)
	}
	return false
}

func (km KeyMap) Bind(key, help string, f func()) {
	km[key] = keyBinding{
		help: help,
		handler: func(string) bool {
			f()
			return true
		},
	}
}

// Help lists the bindings sorted by key, one "key  help" line each.
func (km KeyMap) Help() []string {
	keys := make([]string, 0, len(km))
	width := 0
	for key := range km {
		keys = append(keys, key)
		width = max(width, len(key))
	}
	slices.Sort(keys)
	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = fmt.Sprintf("%-*s  %s", width, key, km[key].help)
	}
	return lines
}

var namedKeys = map[glfw.Key]string{
	glfw.KeySpace:  "Space",
	glfw.KeyEscape: "Escape",
	glfw.KeyEnter:  "Enter",
	glfw.KeyTab:    "Tab",
	glfw.KeyRight:  "Right",
	glfw.KeyLeft:   "Left",
	glfw.KeyDown:   "Down",
	glfw.KeyUp:     "Up",
	glfw.KeyF1:     "F1",
}

func isModifierKey(key glfw.Key) bool {
	switch key {
	case glfw.KeyLeftShift, glfw.KeyLeftControl, glfw.KeyLeftAlt, glfw.KeyLeftSuper,
		glfw.KeyRightShift, glfw.KeyRightControl, glfw.KeyRightAlt, glfw.KeyRightSuper:
		return true
	}
	return false
}

// KeyName turns a glfw key event into the names used by KeyMap: plain
// names like "q" or "Right", prefixed with "S-", "M-" and "C-" for held
// modifiers. Modifier keys on their own yield "".
func KeyName(key glfw.Key, scancode int, mods glfw.ModifierKey) string {
	if isModifierKey(key) {
		return ""
	}
	keyName, ok := namedKeys[key]
	if !ok {
		keyName = glfw.GetKeyName(key, scancode)
	}
	if keyName == "" {
		return ""
	}
	return withModifiers(keyName, mods&glfw.ModShift != 0, mods&glfw.ModAlt != 0, mods&glfw.ModControl != 0)
}

func withModifiers(keyName string, shift, alt, control bool) string {
	if shift {
		keyName = "S-" + keyName
	}
	if alt {
		keyName = "M-" + keyName
	}
	if control {
		keyName = "C-" + keyName
	}
	return keyName
}
