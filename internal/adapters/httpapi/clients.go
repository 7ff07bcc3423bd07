package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/fitout/internal/ports/primary"
)

type createClientBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Remark  string `json:"remark"`
}

type updateClientBody struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Remark  *string `json:"remark"`
}

type moveBody struct {
	Target string `json:"target"`
}

type setSubStageBody struct {
	Done bool `json:"done"`
}

type approveBody struct {
	AllocatedBudget decimal.Decimal `json:"allocated_budget"`
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	filters := primary.ClientFilters{StageID: r.URL.Query().Get("stage")}
	if v := r.URL.Query().Get("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, badRequest{err})
			return
		}
		filters.Approved = &approved
	}

	clients, err := s.clients.ListClients(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if clients == nil {
		clients = []*primary.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var body createClientBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.clients.CreateClient(r.Context(), primary.CreateClientRequest{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Address: body.Address,
		Remark:  body.Remark,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp.Client)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.clients.GetClient(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	var body updateClientBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	client, err := s.clients.UpdateClient(r.Context(), primary.UpdateClientRequest{
		ClientID: chi.URLParam(r, "clientID"),
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		Address:  body.Address,
		Remark:   body.Remark,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) moveClient(w http.ResponseWriter, r *http.Request) {
	var body moveBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	client, err := s.clients.MoveClient(r.Context(), chi.URLParam(r, "clientID"), body.Target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) canMove(w http.ResponseWriter, r *http.Request) {
	check, err := s.clients.CheckMove(r.Context(), chi.URLParam(r, "clientID"), r.URL.Query().Get("target"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) toggleSubStage(w http.ResponseWriter, r *http.Request) {
	client, err := s.clients.ToggleSubStage(r.Context(), chi.URLParam(r, "clientID"), chi.URLParam(r, "subID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) setSubStage(w http.ResponseWriter, r *http.Request) {
	var body setSubStageBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	client, err := s.clients.SetSubStage(r.Context(), chi.URLParam(r, "clientID"), chi.URLParam(r, "subID"), body.Done)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) approveClient(w http.ResponseWriter, r *http.Request) {
	var body approveBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.clients.ApproveClient(r.Context(), primary.ApproveClientRequest{
		ClientID:        chi.URLParam(r, "clientID"),
		AllocatedBudget: body.AllocatedBudget,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listStages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.clients.ListStages(r.Context()))
}

func (s *Server) board(w http.ResponseWriter, r *http.Request) {
	columns, err := s.clients.Board(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columns)
}
