package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/fitout/internal/core/ledger"
	"github.com/example/fitout/internal/ports/primary"
)

type budgetBody struct {
	Budget decimal.Decimal `json:"budget"`
}

type paymentBody struct {
	Amount decimal.Decimal `json:"amount"`
	Mode   string          `json:"mode"`
	Date   string          `json:"date"`
}

// materialLine accepts any JSON number as quantity so that fractions are
// reported as an invalid quantity rather than a malformed body.
type materialLine struct {
	Material string           `json:"material"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

type materialsBody struct {
	Items       []materialLine `json:"items"`
	Distributor string         `json:"distributor"`
	Date        string         `json:"date"`
}

func (b materialsBody) lines() ([]primary.MaterialLine, error) {
	out := make([]primary.MaterialLine, len(b.Items))
	for i, item := range b.Items {
		if !item.Quantity.IsInteger() {
			return nil, fmt.Errorf("item %d (%s): quantity %s: %w", i+1, item.Material, item.Quantity, ledger.ErrInvalidQuantity)
		}
		out[i] = primary.MaterialLine{Material: item.Material, Quantity: item.Quantity.IntPart(), UnitCost: item.UnitCost}
	}
	return out, nil
}

type laborBody struct {
	Workers []primary.WorkerLine `json:"workers"`
	Date    string               `json:"date"`
}

type crewBody struct {
	Name    string                   `json:"name"`
	Members []primary.CrewMemberLine `json:"members"`
}

type applyCrewBody struct {
	Hours decimal.Decimal `json:"hours"`
	Date  string          `json:"date"`
}

func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledgers.GetLedger(r.Context(), chi.URLParam(r, "clientID"))
	s.respondLedger(w, r, summary, err)
}

func (s *Server) setBudget(w http.ResponseWriter, r *http.Request) {
	var body budgetBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.ledgers.SetBudget(r.Context(), chi.URLParam(r, "clientID"), body.Budget)
	s.respondLedger(w, r, summary, err)
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.ledgers.RecordPayment(r.Context(), primary.RecordPaymentRequest{
		ClientID: chi.URLParam(r, "clientID"),
		Amount:   body.Amount,
		Mode:     body.Mode,
		Date:     body.Date,
	})
	s.respondLedger(w, r, summary, err)
}

func (s *Server) recordMaterials(w http.ResponseWriter, r *http.Request) {
	var body materialsBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := body.lines()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.ledgers.RecordMaterialPurchase(r.Context(), primary.RecordMaterialPurchaseRequest{
		ClientID:    chi.URLParam(r, "clientID"),
		Items:       items,
		Distributor: body.Distributor,
		Date:        body.Date,
	})
	s.respondLedger(w, r, summary, err)
}

func (s *Server) recordLabor(w http.ResponseWriter, r *http.Request) {
	var body laborBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.ledgers.RecordLabor(r.Context(), primary.RecordLaborRequest{
		ClientID: chi.URLParam(r, "clientID"),
		Workers:  body.Workers,
		Date:     body.Date,
	})
	s.respondLedger(w, r, summary, err)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledgers.ListTransactions(r.Context(), chi.URLParam(r, "clientID"), r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []*primary.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) listCrews(w http.ResponseWriter, r *http.Request) {
	crews, err := s.ledgers.ListCrews(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, crews)
}

func (s *Server) createCrew(w http.ResponseWriter, r *http.Request) {
	var body crewBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	crew, err := s.ledgers.CreateCrew(r.Context(), primary.CreateCrewRequest{
		ClientID: chi.URLParam(r, "clientID"),
		Name:     body.Name,
		Members:  body.Members,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, crew)
}

func (s *Server) applyCrew(w http.ResponseWriter, r *http.Request) {
	var body applyCrewBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.ledgers.ApplyCrew(r.Context(), primary.ApplyCrewRequest{
		ClientID: chi.URLParam(r, "clientID"),
		CrewID:   chi.URLParam(r, "crewID"),
		Hours:    body.Hours,
		Date:     body.Date,
	})
	s.respondLedger(w, r, summary, err)
}

func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledgers.Catalog(r.Context()))
}

// respondLedger writes a ledger summary or the command's error.
func (s *Server) respondLedger(w http.ResponseWriter, r *http.Request, summary *primary.LedgerSummary, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
