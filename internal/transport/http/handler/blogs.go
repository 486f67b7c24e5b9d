package handler

import (
	"net/http"

	"github.com/go-blog-nosql/internal/application/blog"
	"github.com/go-blog-nosql/internal/domain"
	"github.com/go-blog-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// BlogHandler handles blog post endpoints.
type BlogHandler struct {
	svc blog.Service
}

func NewBlogHandler(svc blog.Service) *BlogHandler { return &BlogHandler{svc: svc} }

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.MsgLoginRequired)
		return
	}
	var req domain.CreateBlogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.Create(r.Context(), claims.ProfileID, req)
	if err != nil {
		writeServiceError(w, err, "Server error while Creating Blog Post")
		return
	}
	writeOK(w, "Blog created Successfully", b)
}

func (h *BlogHandler) UserBlogs(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.MsgLoginRequired)
		return
	}
	blogs, err := h.svc.ListByProfile(r.Context(), claims.ProfileID)
	if err != nil {
		writeServiceError(w, err, "Server error while getting User's Blog Posts")
		return
	}
	writeOK(w, "User's Blog Posts fetched Successfully", blogs)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "Server error while getting Blog Post",
			outcome{domain.ErrNotFound, "Invalid Id"})
		return
	}
	writeOK(w, "Fetched Blog post successfully", b)
}

// List serves one page of published blogs. The response cursor is empty on
// the last page.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, next, err := h.svc.List(r.Context(), r.URL.Query().Get("cursor"))
	if err != nil {
		writeServiceError(w, err, "Server Error while fetching blogs",
			outcome{domain.ErrBadRequest, "Invalid cursor"})
		return
	}
	if len(blogs) == 0 {
		writeError(w, http.StatusNotFound, "No more Blog posts")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Fetched All Blogs successfully",
		Data:    blogs,
		Cursor:  next,
	})
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.MsgLoginRequired)
		return
	}
	var req domain.UpdateBlogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.Update(r.Context(), claims.ProfileID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err, "Server error while updating blog",
			outcome{domain.ErrNotFound, "User's blog not found"})
		return
	}
	writeOK(w, "Blog updated successfully", b)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.MsgLoginRequired)
		return
	}
	if err := h.svc.Delete(r.Context(), claims.ProfileID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "Server error while Deleting Blog",
			outcome{domain.ErrNotFound, "Invalid id or User"})
		return
	}
	writeOK(w, "Blog deleted successfully", nil)
}
