package mux

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"riverroom-server/pkg/room"
	"riverroom-server/pkg/table"
)

func (m *Mux) getTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.pitBoss.Occupancies())
	}
}

type postTablePayload struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	MinBet   int    `json:"minBet"`
	Password string `json:"password"`
}

func (m *Mux) postTable() http.HandlerFunc {
	var wordChar = regexp.MustCompile(`\w`)
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postTablePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !wordChar.MatchString(pp.Name) || len(pp.Name) < 3 || len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name must be 3-40 characters"))
			return
		}

		tbl, err := table.New(logrus.StandardLogger(), pp.Name, pp.Capacity, pp.MinBet, pp.Password)
		if err != nil {
			var ue table.UserError
			if errors.As(err, &ue) {
				writeJSONError(w, http.StatusBadRequest, err)
			} else {
				writeJSONError(w, http.StatusInternalServerError, err)
			}
			return
		}

		m.pitBoss.CreateTable(tbl)
		writeJSON(w, http.StatusCreated, tbl.Occupancy())
	}
}

func (m *Mux) getTableUUID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealer, found := m.dealerFromRequest(w, r)
		if !found {
			return
		}

		writeJSON(w, http.StatusOK, dealer.Occupancy())
	}
}

func (m *Mux) deleteTableUUID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID, err := uuid.Parse(gmux.Vars(r)["uuid"])
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if err := m.pitBoss.DeleteTable(r.Context(), tableID); err != nil {
			if err == room.ErrTableNotFound {
				writeJSONError(w, http.StatusNotFound, nil)
			} else {
				writeJSONError(w, http.StatusInternalServerError, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

func (m *Mux) dealerFromRequest(w http.ResponseWriter, r *http.Request) (*room.Dealer, bool) {
	tableID, err := uuid.Parse(gmux.Vars(r)["uuid"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return nil, false
	}

	dealer, found := m.pitBoss.Dealer(tableID)
	if !found {
		writeJSONError(w, http.StatusNotFound, nil)
		return nil, false
	}

	return dealer, true
}
