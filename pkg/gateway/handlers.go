package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/platform"
	"github.com/CreonHQ/creon/pkg/wallet"
)

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	session := g.platform.Session()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": session.Connected,
		"account":   session.Account,
		"network":   session.NetworkID,
		"posts":     len(g.platform.Posts()),
	})
}

func (g *Gateway) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind := wallet.ParseKind(req.Kind)
	if kind == wallet.KindNone {
		writeError(w, errors.NewValidationError("kind", "unknown wallet kind", req.Kind))
		return
	}

	session, err := g.platform.Connect(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (g *Gateway) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	g.platform.Disconnect()
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

func (g *Gateway) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.platform.Session())
}

func (g *Gateway) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := g.platform.Balance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance})
}

func (g *Gateway) handleListPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.platform.Posts())
}

func (g *Gateway) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req platform.PublishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	post, err := g.platform.Publish(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (g *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	fresh, err := g.platform.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fresh)
}

func (g *Gateway) handleDisclose(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	force := r.URL.Query().Get("force") == "true"

	disclosed, err := g.platform.Disclose(r.Context(), postID, force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, disclosed)
}

func (g *Gateway) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	receipt, err := g.platform.Withdraw(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
