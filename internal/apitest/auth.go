package apitest

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastorder/storefront/internal/auth"
	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/model"
)

type credentialsResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	s.mu.Lock()
	var acct *account
	if id, ok := s.byEmail[req.Email]; ok {
		acct = s.accounts[id]
	}
	s.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.hashedPassword, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(s.secret, acct.ID, acct.Name, acct.Role, tokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{Token: token, User: acct.User})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and password are required"})
		return
	}

	s.mu.Lock()
	if _, exists := s.byEmail[req.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash password"})
		return
	}

	acct := &account{
		User:           model.User{ID: s.id(), Name: req.Name, Email: req.Email, Role: enum.RoleUser},
		hashedPassword: hashed,
	}
	s.accounts[acct.ID] = acct
	s.byEmail[acct.Email] = acct.ID
	s.mu.Unlock()

	token, err := auth.GenerateToken(s.secret, acct.ID, acct.Name, acct.Role, tokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate token"})
		return
	}

	writeJSON(w, http.StatusCreated, credentialsResponse{Token: token, User: acct.User})
}
