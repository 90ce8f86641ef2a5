package transfer

import (
	"github.com/vultisig/xpay/internal/allowance"
	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/nft"
	"github.com/vultisig/xpay/internal/resource"
)

// ResourceView is the JSON form of a resource.Resource.
type ResourceView[T any] struct {
	Status string `json:"status"`
	Data   *T     `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func viewOf[T any](r resource.Resource[T]) ResourceView[T] {
	v := ResourceView[T]{Status: r.Status().String(), Error: r.Err()}
	if data, ok := r.Value(); ok {
		v.Data = &data
	}
	return v
}

type NFTView struct {
	nft.State
	ReadableTargetAddress string `json:"readableTargetAddress,omitempty"`
}

type View struct {
	ID   string `json:"id"`
	Step string `json:"step"`

	SourceChain          chain.ID                    `json:"sourceChain"`
	SourceAsset          *Asset                      `json:"sourceAsset,omitempty"`
	SourceParsedAccount  ResourceView[ParsedAccount] `json:"sourceParsedAccount"`
	SourceWalletAddress  string                      `json:"sourceWalletAddress,omitempty"`
	RequestedFiatAmount  string                      `json:"requestedFiatAmount"`
	ActualTokenAmount    ResourceView[string]        `json:"actualTokenAmount"`
	ActualAmountReadable string                      `json:"actualAmountReadable,omitempty"`

	TargetChain           chain.ID                    `json:"targetChain"`
	TargetAsset           ResourceView[TargetAsset]   `json:"targetAsset"`
	TargetAddressHex      string                      `json:"targetAddressHex,omitempty"`
	ReadableTargetAddress string                      `json:"readableTargetAddress,omitempty"`
	TargetParsedAccount   ResourceView[ParsedAccount] `json:"targetParsedAccount"`

	Allowance         AllowanceState `json:"allowance"`
	AllowanceRequired bool           `json:"allowanceRequired"`
	ApproveLabel      string         `json:"approveLabel,omitempty"`

	TransferTx     *Transaction `json:"transferTx,omitempty"`
	IsSending      bool         `json:"isSending"`
	IsVAAPending   bool         `json:"isVaaPending"`
	IsSendComplete bool         `json:"isSendComplete"`
	LastError      string       `json:"lastError,omitempty"`

	IsSourceComplete bool   `json:"isSourceComplete"`
	IsTargetComplete bool   `json:"isTargetComplete"`
	ShouldLockFields bool   `json:"shouldLockFields"`
	SourceError      string `json:"sourceError,omitempty"`
	TargetError      string `json:"targetError,omitempty"`
	SendError        string `json:"sendError,omitempty"`

	SourceWarning *chain.WarningMessage `json:"sourceWarning,omitempty"`
	TargetWarning *chain.WarningMessage `json:"targetWarning,omitempty"`

	MerchantID string `json:"merchantId,omitempty"`
	OrderID    int64  `json:"orderId"`
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Session) view() View {
	st := s.st
	v := View{
		ID:                   s.id,
		Step:                 st.Step.String(),
		SourceChain:          st.SourceChain,
		SourceParsedAccount:  viewOf(st.SourceParsedAccount),
		SourceWalletAddress:  st.SourceWalletAddress,
		RequestedFiatAmount:  st.RequestedFiatAmount,
		ActualTokenAmount:    viewOf(st.ActualTokenAmount),
		ActualAmountReadable: ActualAmountReadable(st),
		TargetChain:          st.TargetChain,
		TargetAsset:          viewOf(st.TargetAsset),
		TargetAddressHex:     st.TargetAddressHex,
		TargetParsedAccount:  viewOf(st.TargetParsedAccount),
		Allowance:            st.Allowance,
		AllowanceRequired:    allowance.RequiredFor(st),
		IsSending:            st.IsSending,
		IsVAAPending:         st.IsVAAPending,
		IsSendComplete:       st.IsSendComplete,
		LastError:            st.LastError,
		ShouldLockFields:     st.ShouldLockFields(),
		SourceError:          errText(SourceError(st, s.deps.Chains)),
		TargetError:          errText(TargetError(st, s.deps.Chains, s.deps.Registry)),
		SendError:            errText(SendError(st, s.deps.Chains, s.deps.Registry, s.wallets)),
		MerchantID:           st.MerchantID,
		OrderID:              st.OrderID,
	}
	v.IsSourceComplete = v.SourceError == ""
	v.IsTargetComplete = v.TargetError == ""

	if st.SourceAsset != nil {
		asset := *st.SourceAsset
		v.SourceAsset = &asset
	}
	if st.TransferTx != nil {
		tx := *st.TransferTx
		v.TransferTx = &tx
	}
	if st.TargetAddressHex != "" {
		v.ReadableTargetAddress = s.addresses.Readable(st.TargetChain, st.TargetAddressHex)
	}
	if v.AllowanceRequired {
		v.ApproveLabel = ApproveLabel(st, false)
	}
	if st.SourceChain != 0 {
		v.SourceWarning = s.deps.Chains.Warning(st.SourceChain)
	}
	if st.TargetChain != 0 {
		v.TargetWarning = s.deps.Chains.Warning(st.TargetChain)
	}
	return v
}
