package board

import (
	"kegboard/core"
	"kegboard/protocol"
)

// MaxTokenLen is the longest auth token PostAuthToken accepts
const MaxTokenLen = 32

// Auth token status values
const (
	TokenRemoved uint8 = 0
	TokenPresent uint8 = 1
)

// AuthToken is a card, tag or key read by an external decoder
type AuthToken struct {
	Device string // reader name, e.g. "core.rfid"
	Status uint8
	token  [MaxTokenLen]byte
	n      uint8
}

// Token returns the token bytes
func (t *AuthToken) Token() []byte {
	return t.token[:t.n]
}

// PostAuthToken queues a token for reporting. It does not allocate and
// is safe to call from an interrupt handler. It returns false if the
// token is too long or the queue is full.
func (b *Board) PostAuthToken(device string, token []byte, status uint8) bool {
	if len(token) > MaxTokenLen {
		return false
	}
	t := AuthToken{Device: device, Status: status, n: uint8(len(token))}
	copy(t.token[:], token)
	return b.tokens.Push(t)
}

// DroppedAuthTokens returns the number of tokens lost to a full queue
func (b *Board) DroppedAuthTokens() uint32 {
	return b.tokens.Dropped()
}

func (b *Board) drainAuthTokens() {
	for {
		t, ok := b.tokens.Pop()
		if !ok {
			return
		}
		b.sendAuthToken(&t)
	}
}

// sendAuthToken reports one token. The device name is optional and is
// left out if it does not fit.
func (b *Board) sendAuthToken(t *AuthToken) bool {
	p := b.begin(protocol.MessageAuthToken)
	if err := p.AddTag(protocol.AuthTokenTagToken, t.Token()); err != nil {
		b.emitFailed(protocol.MessageAuthToken, err.Error())
		return false
	}
	if err := p.AddUint8(protocol.AuthTokenTagStatus, t.Status); err != nil {
		b.emitFailed(protocol.MessageAuthToken, err.Error())
		return false
	}
	if t.Device != "" {
		if err := p.AddString(protocol.AuthTokenTagDevice, t.Device); err != nil {
			core.DebugPrintln("[TX] auth_token device name omitted: " + err.Error())
		}
	}
	return b.send()
}
