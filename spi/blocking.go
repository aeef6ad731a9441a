package spi

import (
	"errors"

	"lpc81x-go/errcode"
	"lpc81x-go/x/spin"
)

// FullDuplex is the non-blocking word interface the blocking helpers build
// on. *Host implements it.
type FullDuplex interface {
	TrySend(Word) error
	TryReceive(bits int) (Word, error)
}

var _ FullDuplex = (*Host)(nil)

// retry spins on op while it reports errcode.WouldBlock.
func retry(p spin.Policy, name string, op func() error) error {
	return spin.Poll(p, name, func() (bool, error) {
		err := op()
		if errors.Is(err, errcode.WouldBlock) {
			return false, nil
		}
		return true, err
	})
}

// Send blocks until w has been queued.
func Send(fd FullDuplex, w Word, p spin.Policy) error {
	return retry(p, "spi.Send", func() error { return fd.TrySend(w) })
}

// Receive blocks until a word of the given length has arrived.
func Receive(fd FullDuplex, bits int, p spin.Policy) (Word, error) {
	var w Word
	err := retry(p, "spi.Receive", func() error {
		var err error
		w, err = fd.TryReceive(bits)
		return err
	})
	return w, err
}

// Transfer sends w and returns the word clocked in with it.
func Transfer(fd FullDuplex, w Word, p spin.Policy) (Word, error) {
	if err := Send(fd, w, p); err != nil {
		return Word{}, err
	}
	return Receive(fd, w.Bits(), p)
}

// WriteWords sends ws, discarding what comes back. Each reply is drained
// before the next word goes out so the receiver never overruns.
func WriteWords(fd FullDuplex, ws []Word, p spin.Policy) error {
	for _, w := range ws {
		if _, err := Transfer(fd, w, p); err != nil {
			return err
		}
	}
	return nil
}

// TransferWords exchanges ws in place.
func TransferWords(fd FullDuplex, ws []Word, p spin.Policy) error {
	for i, w := range ws {
		in, err := Transfer(fd, w, p)
		if err != nil {
			return err
		}
		ws[i] = in
	}
	return nil
}
