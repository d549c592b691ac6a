package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderjulianmartinez/peopledb/internal/people"
	"github.com/alexanderjulianmartinez/peopledb/internal/screens"
)

type listPage struct {
	Title  string
	People []people.Person
}

type formPage struct {
	Title string
	Form  *screens.EditScreen
	Error string
}

func (s *Server) showList(w http.ResponseWriter, r *http.Request) {
	if err := s.list.Load(r.Context()); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "list.html", listPage{
		Title:  "People",
		People: s.list.People(),
	})
}

func (s *Server) showNew(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, s.list.NewForm(), "")
}

func (s *Server) showEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(w, r)
	if !ok {
		return
	}
	form, err := s.list.EditForm(r.Context(), id)
	if errors.Is(err, people.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, form, "")
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, s.list.NewForm())
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(w, r)
	if !ok {
		return
	}
	form := s.list.NewForm()
	form.RecordID = id
	s.save(w, r, form)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, form *screens.EditScreen) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form.FirstName = r.PostForm.Get("firstname")
	form.LastName = r.PostForm.Get("lastname")
	form.Age = r.PostForm.Get("age")

	_, err := form.Save(r.Context())
	switch {
	case errors.Is(err, screens.ErrInvalidAge):
		s.renderForm(w, r, http.StatusUnprocessableEntity, form, err.Error())
		return
	case errors.Is(err, people.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(w, r)
	if !ok {
		return
	}
	err := s.list.Delete(r.Context(), id)
	if errors.Is(err, people.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, form *screens.EditScreen, msg string) {
	title := "Edit person"
	if form.IsNew() {
		title = "Add person"
	}
	s.render(w, r, status, "form.html", formPage{Title: title, Form: form, Error: msg})
}

func personID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
