package evm

import (
	"errors"
	"fmt"
)

var ErrTxReverted = errors.New("transaction reverted")

func errUnexpectedOutputs(method string, n int) error {
	return fmt.Errorf("unexpected outputs for %s: got %d values", method, n)
}
