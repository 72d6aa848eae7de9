// fees.go — просмотр и оплата штрафов.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// GetFee — GET /api/v1/fees/{borrowId}.
// Штраф по идентификатору выдачи.
func (h *PortalHandler) GetFee(w http.ResponseWriter, r *http.Request) {
	borrowID := chi.URLParam(r, "borrowId")

	fee, err := h.circulation.FeeByBorrow(r.Context(), borrowID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fee)
}

// ListFees — GET /api/v1/fees?membership=<id>.
// История штрафов читательского билета.
func (h *PortalHandler) ListFees(w http.ResponseWriter, r *http.Request) {
	membershipID := r.URL.Query().Get("membership")
	if membershipID == "" {
		apierrors.ValidationError(w, "Обязательный параметр запроса: membership")
		return
	}

	fees, err := h.circulation.Fees(r.Context(), membershipID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if fees == nil {
		fees = []*model.Fee{}
	}
	writeJSON(w, http.StatusOK, fees)
}

// PayFee — POST /api/v1/fees/pay.
// Помечает штраф оплаченным; операция идемпотентна.
func (h *PortalHandler) PayFee(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FeeID string `json:"feeId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.FeeID == "" {
		apierrors.ValidationError(w, "Обязательное поле: feeId")
		return
	}

	fee, err := h.circulation.PayFee(r.Context(), body.FeeID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fee)
}
