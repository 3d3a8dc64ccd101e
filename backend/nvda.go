package backend

import "github.com/denizsincar29/keyplayer/keys"

// KeySender delivers a resolved key event somewhere else, e.g. an
// nvdaremote.Client relaying to a remote NVDA.
type KeySender interface {
	SendKeyEvent(info keys.Info, pressed bool) error
}

// NVDA presses keys on a remote machine through NVDA Remote.
type NVDA struct {
	sender KeySender
}

// NewNVDA wraps a connected relay client.
func NewNVDA(sender KeySender) *NVDA {
	return &NVDA{sender: sender}
}

func (n *NVDA) Name() string { return "nvda" }

func (n *NVDA) Press(key string) (KeyCode, error) {
	code, err := resolve(key)
	if err != nil {
		return KeyCode{}, err
	}
	if err := n.sender.SendKeyEvent(code, true); err != nil {
		return KeyCode{}, err
	}
	return code, nil
}

func (n *NVDA) Release(code KeyCode) error {
	return n.sender.SendKeyEvent(code, false)
}
