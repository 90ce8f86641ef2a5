// Package addresssync publishes the 32-byte destination address for the
// active target chain into the transfer aggregates that need one.
package addresssync

import (
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/chain"
)

// Slice is the part of an aggregate the synchronizer writes.
type Slice interface {
	TargetChainID() chain.ID
	CurrentTargetAddressHex() string
	SetTargetAddressHex(hexAddr string)
}

type Wallet interface {
	ConnectedAddress(id chain.ID) (string, bool)
}

type Synchronizer struct {
	wallet Wallet
	// payees are merchant destinations that take precedence over the wallet
	payees map[chain.ID]string
	logger *logrus.Logger
}

func NewSynchronizer(wallet Wallet, payees map[chain.ID]string, logger *logrus.Logger) *Synchronizer {
	p := make(map[chain.ID]string, len(payees))
	for id, addr := range payees {
		if addr != "" {
			p[id] = addr
		}
	}
	return &Synchronizer{wallet: wallet, payees: p, logger: logger}
}

// Destination returns the native destination address for id and whether one
// is known.
func (s *Synchronizer) Destination(id chain.ID) (string, bool) {
	if addr, ok := s.payees[id]; ok {
		return addr, true
	}
	if s.wallet == nil {
		return "", false
	}
	addr, ok := s.wallet.ConnectedAddress(id)
	return addr, ok && addr != ""
}

// Sync writes the canonical destination for the slice's target chain. It does
// nothing when disabled, which callers use once fields are locked.
func (s *Synchronizer) Sync(slice Slice, enabled bool) {
	if !enabled {
		return
	}
	next := s.resolve(slice.TargetChainID())
	if next != slice.CurrentTargetAddressHex() {
		slice.SetTargetAddressHex(next)
	}
}

func (s *Synchronizer) resolve(id chain.ID) string {
	if id == 0 {
		return ""
	}
	native, ok := s.Destination(id)
	if !ok {
		return ""
	}
	family, err := chain.FamilyOf(id)
	if err != nil {
		s.logger.WithError(err).WithField("chain", id.String()).Warn("no address family for target chain")
		return ""
	}
	hexAddr, err := family.CanonicalHex(native)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"chain":   id.String(),
			"address": native,
		}).Warn("failed to encode destination address")
		return ""
	}
	return hexAddr
}

// Readable renders hexAddr on id for display, using the wallet's identity on
// that chain where the family needs one. The addressing hex is not modified.
func (s *Synchronizer) Readable(id chain.ID, hexAddr string) string {
	identity := ""
	if s.wallet != nil {
		identity, _ = s.wallet.ConnectedAddress(id)
	}
	return Readable(id, hexAddr, identity)
}

func Readable(id chain.ID, hexAddr, identity string) string {
	if hexAddr == "" {
		return ""
	}
	family, err := chain.FamilyOf(id)
	if err != nil {
		return hexAddr
	}
	return family.Readable(hexAddr, identity)
}
