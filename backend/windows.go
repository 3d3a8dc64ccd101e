//go:build windows

package backend

import (
	"unicode/utf8"

	"golang.org/x/sys/windows"
)

const (
	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
	mapvkVKToVSC         = 0
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procVkKeyScanW     = user32.NewProc("VkKeyScanW")
	procMapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
	procKeybdEvent     = user32.NewProc("keybd_event")
)

// Windows injects hardware-level key events with keybd_event, resolving
// characters through the active keyboard layout.
type Windows struct{}

// NewWindows loads user32 and returns the native backend.
func NewWindows() (Backend, error) {
	for _, p := range []*windows.LazyProc{procVkKeyScanW, procMapVirtualKeyW, procKeybdEvent} {
		if err := p.Find(); err != nil {
			return nil, err
		}
	}
	return &Windows{}, nil
}

func (w *Windows) Name() string { return "windows" }

// Press resolves single characters via VkKeyScanW and key names via the
// shared key table, then sends key-down.
func (w *Windows) Press(key string) (KeyCode, error) {
	var code KeyCode
	if utf8.RuneCountInString(key) == 1 && key != " " {
		r, _ := utf8.DecodeRuneInString(key)
		ret, _, _ := procVkKeyScanW.Call(uintptr(r))
		vk := uint16(ret) & 0xFF
		// 0xFF is the low byte of -1: no translation in this layout
		if vk == 0 || vk == 0xFF {
			return KeyCode{}, &UnsupportedKeyError{Key: key}
		}
		scan, _, _ := procMapVirtualKeyW.Call(uintptr(vk), mapvkVKToVSC)
		code = KeyCode{VKCode: vk, ScanCode: uint16(scan)}
	} else {
		var err error
		if code, err = resolve(key); err != nil {
			return KeyCode{}, err
		}
	}
	w.send(code, 0)
	return code, nil
}

func (w *Windows) Release(code KeyCode) error {
	w.send(code, keyeventfKeyUp)
	return nil
}

func (w *Windows) send(code KeyCode, flags uintptr) {
	if code.Extended {
		flags |= keyeventfExtendedKey
	}
	procKeybdEvent.Call(uintptr(byte(code.VKCode)), uintptr(byte(code.ScanCode)), flags, 0)
}
