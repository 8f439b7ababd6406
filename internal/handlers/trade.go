package handlers

import (
	"net/http"

	"finance/internal/models"
	"finance/internal/money"
	"finance/internal/services"
	"finance/internal/websocket"
)

type tradeForm struct {
	Symbol string
	Shares string
}

func parseTradeForm(r *http.Request) tradeForm {
	return tradeForm{
		Symbol: r.PostFormValue("symbol"),
		Shares: r.PostFormValue("shares"),
	}
}

type quotedView struct {
	Symbol string
	Name   string
	Price  int64
}

type buyView struct {
	Symbol string
}

type sellView struct {
	Holdings []models.Holding
}

type historyView struct {
	Transactions []models.Transaction
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolio.Portfolio(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "index.html", portfolio)
}

func (h *Handler) QuoteForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "quote.html", nil)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.trades.Lookup(r.Context(), r.PostFormValue("symbol"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "quoted.html", quotedView{
		Symbol: q.Symbol,
		Name:   q.Name,
		Price:  q.PriceMinor(),
	})
}

func (h *Handler) BuyForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "buy.html", buyView{Symbol: r.URL.Query().Get("symbol")})
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	form := parseTradeForm(r)
	if _, err := h.trades.Buy(r.Context(), services.TradeRequest{
		UserID: currentUser(r),
		Symbol: form.Symbol,
		Shares: form.Shares,
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	h.flash(r, "Bought!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) SellForm(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolio.Holdings(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "sell.html", sellView{Holdings: holdings})
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	form := parseTradeForm(r)
	if _, err := h.trades.Sell(r.Context(), services.TradeRequest{
		UserID: currentUser(r),
		Symbol: form.Symbol,
		Shares: form.Shares,
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	h.flash(r, "Sold!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.portfolio.History(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "history.html", historyView{Transactions: transactions})
}

func (h *Handler) AddFundsForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "add_funds.html", nil)
}

func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request) {
	amount, _, err := h.trades.AddFunds(r.Context(), currentUser(r), r.PostFormValue("amount"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.flash(r, "Successfully added "+money.USD(amount))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) WSPortfolio(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(w, r, h.hub, currentUser(r))
}
