package wallet

import (
	"github.com/vultisig/xpay/internal/chain"
)

// Registry holds the address each chain's wallet reports as connected. It is
// owned by the session event loop and is not safe for concurrent use.
type Registry struct {
	addresses map[chain.ID]string
}

func NewRegistry() *Registry {
	return &Registry{addresses: make(map[chain.ID]string)}
}

func (r *Registry) ConnectedAddress(id chain.ID) (string, bool) {
	addr, ok := r.addresses[id]
	return addr, ok && addr != ""
}

// Set records addr as connected for id. An empty addr disconnects.
func (r *Registry) Set(id chain.ID, addr string) {
	if addr == "" {
		delete(r.addresses, id)
		return
	}
	r.addresses[id] = addr
}

func (r *Registry) Snapshot() map[chain.ID]string {
	res := make(map[chain.ID]string, len(r.addresses))
	for k, v := range r.addresses {
		res[k] = v
	}
	return res
}
