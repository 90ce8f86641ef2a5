package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/transfer"
)

var errBadRequest = errors.New("bad request")

type chainInfo struct {
	ID               chain.ID              `json:"id"`
	Name             string                `json:"name"`
	Kind             string                `json:"kind"`
	DisableTransfers string                `json:"disableTransfers,omitempty"`
	Warning          *chain.WarningMessage `json:"warningMessage,omitempty"`
}

func (s *Server) listChains(c echo.Context) error {
	all := chain.All()
	res := make([]chainInfo, 0, len(all))
	for _, info := range all {
		cfg := s.chains[info.ID]
		res = append(res, chainInfo{
			ID:               info.ID,
			Name:             info.Name,
			Kind:             info.Kind.String(),
			DisableTransfers: string(cfg.DisableTransfers),
			Warning:          cfg.WarningMessage,
		})
	}
	return c.JSON(http.StatusOK, res)
}

type createSessionRequest struct {
	MerchantID string `json:"merchantId"`
	OrderID    int64  `json:"orderId"`
}

func (s *Server) createSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	if req.MerchantID == "" {
		req.MerchantID = c.QueryParam("merchantId")
	}

	sess := s.sessions.Create()
	ctx := c.Request().Context()
	if err := sess.SetMerchant(ctx, req.MerchantID, req.OrderID); err != nil {
		return s.fail(c, err)
	}
	v, err := sess.Snapshot(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (s *Server) session(c echo.Context) (*transfer.Session, error) {
	return s.sessions.Get(c.Param("id"))
}

// respond runs op against the session and replies with its new view.
func (s *Server) respond(c echo.Context, op func(*transfer.Session) error) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, err)
	}
	if op != nil {
		if err := op(sess); err != nil {
			return s.fail(c, err)
		}
	}
	v, err := sess.Snapshot(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) getSession(c echo.Context) error {
	return s.respond(c, nil)
}

func (s *Server) deleteSession(c echo.Context) error {
	if err := s.sessions.Close(c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type walletRequest struct {
	Address string `json:"address"`
}

func (s *Server) setWallet(c echo.Context) error {
	id, err := chain.Parse(c.Param("chain"))
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	var req walletRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.SetConnectedAddress(c.Request().Context(), id, req.Address)
	})
}

type sourceRequest struct {
	Chain string          `json:"chain"`
	Asset *transfer.Asset `json:"asset,omitempty"`
}

func (s *Server) setSource(c echo.Context) error {
	var req sourceRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	id, err := chain.Parse(req.Chain)
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	return s.respond(c, func(sess *transfer.Session) error {
		ctx := c.Request().Context()
		if err := sess.SetSourceChain(ctx, id); err != nil {
			return err
		}
		if req.Asset == nil {
			return nil
		}
		return sess.SetSourceAsset(ctx, *req.Asset)
	})
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) setAmount(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.SetAmount(c.Request().Context(), req.Amount)
	})
}

type targetRequest struct {
	Chain string `json:"chain"`
}

func (s *Server) setTarget(c echo.Context) error {
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	id, err := chain.Parse(req.Chain)
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.SetTargetChain(c.Request().Context(), id)
	})
}

func (s *Server) next(c echo.Context) error {
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.Next(c.Request().Context())
	})
}

type stepRequest struct {
	Step string `json:"step"`
}

var steps = map[string]transfer.Step{
	"source": transfer.StepSource,
	"target": transfer.StepTarget,
	"send":   transfer.StepSend,
}

func (s *Server) setStep(c echo.Context) error {
	var req stepRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	step, ok := steps[req.Step]
	if !ok {
		return s.fail(c, fmt.Errorf("%w: unknown step %q", errBadRequest, req.Step))
	}
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.SetStep(c.Request().Context(), step)
	})
}

type approveRequest struct {
	Unlimited bool `json:"unlimited"`
}

func (s *Server) approve(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.Approve(c.Request().Context(), req.Unlimited)
	})
}

func (s *Server) submit(c echo.Context) error {
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.Submit(c.Request().Context())
	})
}

func (s *Server) settle(c echo.Context) error {
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.MarkSettled(c.Request().Context())
	})
}

func (s *Server) reset(c echo.Context) error {
	return s.respond(c, func(sess *transfer.Session) error {
		return sess.Reset(c.Request().Context())
	})
}

// respondNFT runs op against the session and replies with its NFT view.
func (s *Server) respondNFT(c echo.Context, op func(*transfer.Session) error) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, err)
	}
	if op != nil {
		if err := op(sess); err != nil {
			return s.fail(c, err)
		}
	}
	v, err := sess.NFT(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) getNFT(c echo.Context) error {
	return s.respondNFT(c, nil)
}

type nftSourceRequest struct {
	Chain          string `json:"chain"`
	OriginChain    string `json:"originChain"`
	OriginAssetHex string `json:"originAssetHex"`
	TokenID        string `json:"tokenId"`
}

func (s *Server) setNFTSource(c echo.Context) error {
	var req nftSourceRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	sourceChain, err := chain.Parse(req.Chain)
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	originChain := sourceChain
	if req.OriginChain != "" {
		originChain, err = chain.Parse(req.OriginChain)
		if err != nil {
			return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		}
	}
	if req.TokenID == "" {
		return s.fail(c, fmt.Errorf("%w: tokenId is required", errBadRequest))
	}
	return s.respondNFT(c, func(sess *transfer.Session) error {
		return sess.SetNFTSource(c.Request().Context(), sourceChain, originChain, req.OriginAssetHex, req.TokenID)
	})
}

func (s *Server) setNFTTarget(c echo.Context) error {
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	id, err := chain.Parse(req.Chain)
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	return s.respondNFT(c, func(sess *transfer.Session) error {
		return sess.SetNFTTargetChain(c.Request().Context(), id)
	})
}
