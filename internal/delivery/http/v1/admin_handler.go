package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"linire-backend/internal/delivery/http/middleware"
	"linire-backend/internal/delivery/http/response"
	"linire-backend/internal/domain"
	"linire-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const paginationWindow = 2

type AdminHandler struct {
	adminUC  domain.AdminUsecase
	siteName string
}

// NewAdminHandler registers the back office pages. protected must already
// run the CSRF and admin session middleware.
func NewAdminHandler(protected *gin.RouterGroup, adminUC domain.AdminUsecase, siteName string) {
	handler := &AdminHandler{adminUC: adminUC, siteName: siteName}

	protected.GET("", handler.List)
	protected.GET("/submissions", handler.List)
	protected.POST("", handler.UpdateStatus)
	protected.POST("/submissions/status", handler.UpdateStatus)
	protected.GET("/submissions/:id", handler.Detail)
	protected.GET("/export", handler.Export)
}

// pageData is shared by every admin template
type pageData struct {
	SiteName   string
	Title      string
	Admin      string
	CSRFToken  string
	Filter     string
	ReturnPage int
	Flash      *response.Flash
}

type statusButton struct {
	CSRFToken string
	ID        int64
	Action    string
	Label     string
	Filter    string
	Page      int
}

// Button builds the form for one status action; the redirect keeps the
// current filter and page.
func (p pageData) Button(id int64, action, label string) statusButton {
	return statusButton{
		CSRFToken: p.CSRFToken,
		ID:        id,
		Action:    action,
		Label:     label,
		Filter:    p.Filter,
		Page:      p.ReturnPage,
	}
}

type filterOption struct {
	Value    string
	Label    string
	Selected bool
}

type listPage struct {
	pageData
	Stats         domain.SubmissionStats
	Items         []domain.Submission
	FilterOptions []filterOption
	Page          int
	TotalPages    int
	Pages         []int
	HasPrev       bool
	HasNext       bool
	PrevPage      int
	NextPage      int
}

type detailPage struct {
	pageData
	Submission *domain.Submission
}

func (h *AdminHandler) newPage(c *gin.Context, title string, filter domain.StatusFilter) pageData {
	admin, _ := domain.AdminPrincipalFrom(c.Request.Context())
	return pageData{
		SiteName:   h.siteName,
		Title:      title,
		Admin:      admin.Username,
		CSRFToken:  middleware.CSRFToken(c),
		Filter:     filter.String(),
		ReturnPage: 1,
		Flash:      response.PopFlash(c),
	}
}

// List renders the submissions table
func (h *AdminHandler) List(c *gin.Context) {
	filter := domain.ParseStatusFilter(c.Query("status"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	listing, err := h.adminUC.ListSubmissions(c.Request.Context(), filter, page, 0)
	if err != nil {
		h.fail(c, err)
		return
	}

	data := listPage{
		pageData:      h.newPage(c, "Contact Submissions", filter),
		Stats:         listing.Stats,
		Items:         listing.Data,
		FilterOptions: filterOptions(filter),
		Page:          listing.Page,
		TotalPages:    listing.TotalPages,
		Pages:         pageWindow(listing.Page, listing.TotalPages),
		HasPrev:       listing.Page > 1,
		HasNext:       listing.Page < listing.TotalPages,
		PrevPage:      listing.Page - 1,
		NextPage:      listing.Page + 1,
	}
	data.ReturnPage = listing.Page

	c.HTML(http.StatusOK, "list.html", data)
}

// UpdateStatus applies a status action posted from the table and redirects
// back to it with a flash message.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, _ := strconv.ParseInt(c.PostForm("id"), 10, 64)
	action := c.PostForm("action")

	result, err := h.adminUC.UpdateStatus(c.Request.Context(), id, action)
	if err != nil {
		h.fail(c, err)
		return
	}

	kind := response.FlashSuccess
	if !result.Success {
		kind = response.FlashError
	}
	response.SetFlash(c, kind, result.FlashMessage)

	c.Redirect(http.StatusSeeOther, listURL(domain.ParseStatusFilter(c.PostForm("status")), c.PostForm("page")))
}

// Detail renders one submission
func (h *AdminHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid submission ID"))
		return
	}

	sub, err := h.adminUC.GetSubmission(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "detail.html", detailPage{
		pageData:   h.newPage(c, fmt.Sprintf("Submission #%d", sub.ID), domain.FilterAll),
		Submission: sub,
	})
}

// Export downloads the submissions matching ?status= as a spreadsheet
func (h *AdminHandler) Export(c *gin.Context) {
	filter := domain.ParseStatusFilter(c.Query("status"))

	export, err := h.adminUC.ExportSubmissions(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// fail sends a lost session back to the login page; everything else goes
// through the error middleware.
func (h *AdminHandler) fail(c *gin.Context, err error) {
	if apperror.StatusOf(err) == http.StatusUnauthorized {
		c.Redirect(http.StatusSeeOther, middleware.AdminLoginPath)
		return
	}
	c.Error(err)
}

func filterOptions(selected domain.StatusFilter) []filterOption {
	options := []filterOption{{Value: string(domain.FilterAll), Label: "All Submissions", Selected: selected.IsAll()}}
	for _, s := range domain.AllStatuses {
		options = append(options, filterOption{
			Value:    string(s),
			Label:    statusLabel(s),
			Selected: !selected.IsAll() && selected.Status() == s,
		})
	}
	return options
}

func statusLabel(s domain.SubmissionStatus) string {
	switch s {
	case domain.StatusNew:
		return "New"
	case domain.StatusRead:
		return "Read"
	case domain.StatusReplied:
		return "Replied"
	case domain.StatusArchived:
		return "Archived"
	}
	return string(s)
}

// pageWindow lists the page links shown around current
func pageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	start := max(1, current-paginationWindow)
	end := min(total, current+paginationWindow)
	if start > end {
		return nil
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func listURL(filter domain.StatusFilter, page string) string {
	q := url.Values{}
	q.Set("status", filter.String())
	if p, err := strconv.Atoi(page); err == nil && p > 1 {
		q.Set("page", strconv.Itoa(p))
	}
	return "/admin?" + q.Encode()
}
