// Package admin provides typed wrappers for the CMS resources the admin
// panel manages. All calls go through the authenticated request executor, so
// token expiry is recovered transparently.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/PhucVu3008/koola-admin/internal/koola"
)

// Lead is a contact-form submission.
type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is a CMS-managed content page.
type Page struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Career is a job posting.
type Career struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Open        bool   `json:"open"`
}

// UploadResult is the stored location of an uploaded asset.
type UploadResult struct {
	URL string `json:"url"`
}

type leadsResponse struct {
	Leads []Lead `json:"leads"`
}

type pagesResponse struct {
	Pages []Page `json:"pages"`
}

type careersResponse struct {
	Careers []Career `json:"careers"`
}

// Service exposes the admin API resources.
type Service struct {
	api *koola.Client
}

func NewService(api *koola.Client) *Service {
	return &Service{api: api}
}

// ListLeads fetches contact-form leads, newest first.
func (s *Service) ListLeads(ctx context.Context, limit, offset int) ([]Lead, error) {
	result := &leadsResponse{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodGet,
		Path:   "/admin/leads",
		Query: map[string]string{
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		},
		Result: result,
	})
	return result.Leads, err
}

// DeleteLead removes a lead.
func (s *Service) DeleteLead(ctx context.Context, id int64) error {
	return s.api.Do(ctx, koola.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/admin/leads/%d", id),
	})
}

// ListPages fetches all content pages, drafts included.
func (s *Service) ListPages(ctx context.Context) ([]Page, error) {
	result := &pagesResponse{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodGet,
		Path:   "/admin/pages",
		Result: result,
	})
	return result.Pages, err
}

// CreatePage creates a content page and returns it with server-assigned
// fields filled in.
func (s *Service) CreatePage(ctx context.Context, page Page) (*Page, error) {
	result := &Page{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodPost,
		Path:   "/admin/pages",
		Body:   page,
		Result: result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePage replaces a page's content.
func (s *Service) UpdatePage(ctx context.Context, page Page) (*Page, error) {
	result := &Page{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/admin/pages/%d", page.ID),
		Body:   page,
		Result: result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePage removes a page.
func (s *Service) DeletePage(ctx context.Context, id int64) error {
	return s.api.Do(ctx, koola.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/admin/pages/%d", id),
	})
}

// ListCareers fetches job postings.
func (s *Service) ListCareers(ctx context.Context) ([]Career, error) {
	result := &careersResponse{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodGet,
		Path:   "/admin/careers",
		Result: result,
	})
	return result.Careers, err
}

// CreateCareer creates a job posting.
func (s *Service) CreateCareer(ctx context.Context, career Career) (*Career, error) {
	result := &Career{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodPost,
		Path:   "/admin/careers",
		Body:   career,
		Result: result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UploadImage uploads an image for use in page content. The request is
// multipart; token expiry is recovered the same way as for JSON calls.
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	result := &UploadResult{}
	err := s.api.Do(ctx, koola.Request{
		Method: http.MethodPost,
		Path:   "/admin/uploads",
		Files: []koola.File{
			{Param: "file", Name: filename, Data: data},
		},
		Result: result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
