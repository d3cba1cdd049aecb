package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

func (s *Service) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.userSvc.ListUsers(r.Context())
	if err != nil {
		return fmt.Errorf("user service list users: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newUserResponses(users))
	return nil
}

func (s *Service) getUser(w http.ResponseWriter, r *http.Request) error {
	var id uuid.UUID
	if err := bindPathParam(r, "id", &id); err != nil {
		return err
	}

	user, err := s.userSvc.GetUser(r.Context(), id)
	if err != nil {
		return fmt.Errorf("user service get user: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newUserResponse(user))
	return nil
}

// createUser answers with the whole user listing; the new user is found
// through the Location header.
func (s *Service) createUser(w http.ResponseWriter, r *http.Request) error {
	var req UserRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return err
	}

	user, users, err := s.userSvc.CreateUser(r.Context(), req.toParams())
	if err != nil {
		return fmt.Errorf("user service create user: %w", err)
	}

	w.Header().Set("Location", "/api/users/"+user.ID.String())
	s.writeJSON(w, r, http.StatusCreated, newUserResponses(users))
	return nil
}

func (s *Service) updateUser(w http.ResponseWriter, r *http.Request) error {
	var id uuid.UUID
	if err := bindPathParam(r, "id", &id); err != nil {
		return err
	}

	var req UserRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return err
	}

	user, err := s.userSvc.UpdateUser(r.Context(), id, req.toParams())
	if err != nil {
		return fmt.Errorf("user service update user: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newUserResponse(user))
	return nil
}
