// Package keys translates key identifiers into Windows virtual-key codes and
// PC/AT set 1 scan codes.
//
// A key identifier is either a single printable character as it appears on a
// US keyboard ("q", "1", ";", " ") or a key name ("space", "enter", "f5").
// Matching is case-insensitive.
package keys

import (
	"fmt"
	"strings"
)

// Info holds the codes needed to synthesize a key event.
// A zero VKCode means the key could not be resolved.
type Info struct {
	VKCode   uint16 `json:"vk_code"`
	ScanCode uint16 `json:"scan_code"`
	Extended bool   `json:"extended"`
}

var (
	byName = make(map[string]Info)
	byCode = make(map[uint16]string)
)

// letter scan codes, a..z
var letterScans = [26]uint16{
	0x1E, 0x30, 0x2E, 0x20, 0x12, 0x21, 0x22, 0x23, 0x17, 0x24, 0x25, 0x26, 0x32,
	0x31, 0x18, 0x19, 0x10, 0x13, 0x1F, 0x14, 0x16, 0x2F, 0x11, 0x2D, 0x15, 0x2C,
}

func init() {
	for i := 0; i < 26; i++ {
		addKey(uint16(0x41+i), letterScans[i], false, string(rune('a'+i)))
	}
	// 1..9 then 0 on the top row
	for i := 1; i <= 9; i++ {
		addKey(uint16(0x30+i), uint16(0x01+i), false, fmt.Sprintf("%d", i))
	}
	addKey(0x30, 0x0B, false, "0")

	addKey(0x08, 0x0E, false, "backspace")
	addKey(0x09, 0x0F, false, "tab")
	addKey(0x0D, 0x1C, false, "enter")
	addKey(0x10, 0x2A, false, "shift")
	addKey(0x11, 0x1D, false, "control")
	addKey(0x12, 0x38, false, "alt")
	addKey(0x14, 0x3A, false, "capsLock")
	addKey(0x1B, 0x01, false, "escape")
	addKey(0x20, 0x39, false, "space")
	addKey(0x21, 0x49, true, "pageUp")
	addKey(0x22, 0x51, true, "pageDown")
	addKey(0x23, 0x4F, true, "end")
	addKey(0x24, 0x47, true, "home")
	addKey(0x25, 0x4B, true, "leftArrow")
	addKey(0x26, 0x48, true, "upArrow")
	addKey(0x27, 0x4D, true, "rightArrow")
	addKey(0x28, 0x50, true, "downArrow")
	addKey(0x2D, 0x52, true, "insert")
	addKey(0x2E, 0x53, true, "delete")

	for i := 1; i <= 10; i++ {
		addKey(uint16(0x70+i-1), uint16(0x3B+i-1), false, fmt.Sprintf("f%d", i))
	}
	addKey(0x7A, 0x57, false, "f11")
	addKey(0x7B, 0x58, false, "f12")

	// OEM punctuation, US layout
	addKey(0xBA, 0x27, false, ";")
	addKey(0xBB, 0x0D, false, "=")
	addKey(0xBC, 0x33, false, ",")
	addKey(0xBD, 0x0C, false, "-")
	addKey(0xBE, 0x34, false, ".")
	addKey(0xBF, 0x35, false, "/")
	addKey(0xC0, 0x29, false, "`")
	addKey(0xDB, 0x1A, false, "[")
	addKey(0xDC, 0x2B, false, "\\")
	addKey(0xDD, 0x1B, false, "]")
	addKey(0xDE, 0x28, false, "'")
}

func addKey(vk, scan uint16, ext bool, name string) {
	byName[strings.ToLower(name)] = Info{VKCode: vk, ScanCode: scan, Extended: ext}
	if _, exists := byCode[vk]; !exists {
		byCode[vk] = name
	}
}

// normalize maps a single space character to its key name.
func normalize(key string) string {
	if key == " " {
		return "space"
	}
	return strings.ToLower(key)
}

// Lookup resolves a key identifier. It returns an error only if the key is unknown.
func Lookup(key string) (Info, error) {
	info, ok := byName[normalize(key)]
	if !ok {
		return Info{}, fmt.Errorf("key not found: %q", key)
	}
	return info, nil
}

// Name returns the canonical name for a virtual-key code.
func Name(vk uint16) (string, error) {
	name, ok := byCode[vk]
	if !ok {
		return "", fmt.Errorf("key name not found for VKCode: 0x%X", vk)
	}
	return name, nil
}
