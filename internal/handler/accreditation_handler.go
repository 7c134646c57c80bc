package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"accreditation-backend/internal/service"
	"accreditation-backend/pkg/pagination"
	"accreditation-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccreditationHandler struct {
	accService service.AccreditationService
}

// NewAccreditationHandler sets up the routing dependencies for the
// accreditation endpoints
func NewAccreditationHandler(accService service.AccreditationService) *AccreditationHandler {
	return &AccreditationHandler{accService: accService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AccreditationHandler) RegisterRoutes(router *gin.RouterGroup) {
	subs := router.Group("/submissions")
	{
		subs.POST("", h.Submit)
		subs.GET("", h.List)
		subs.GET("/export/csv", h.ExportCSV)
		subs.GET("/export/excel", h.ExportExcel)
		subs.POST("/import", h.Import)
		subs.PUT("/:id", h.Update)
		subs.PATCH("/:id/status", h.UpdateStatus)
		subs.DELETE("/:id", h.Delete)
	}

	// The bulk wipe lives under its own prefix: gin's router cannot mix a
	// static "type" segment with the ":id" wildcard above.
	router.DELETE("/types/:type/submissions", h.BulkDeleteByType)
}

// httpStatus maps service errors to response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrNoFieldsToUpdate),
		errors.Is(err, service.ErrInvalidFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	code := httpStatus(err)
	c.JSON(code, response.Error(code, err.Error()))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id"))
		return 0, false
	}
	return uint(id), true
}

// Submit handles the public multipart form submission
// @Summary      Submit an accreditation request
// @Description  Creates an accreditation record from the public form, storing up to six document uploads
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/submissions [post]
func (h *AccreditationHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	files := make(map[string]*multipart.FileHeader)
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, field := range service.UploadFields {
			if fhs := form.File[field]; len(fhs) > 0 {
				files[field] = fhs[0]
			}
		}
	}

	id, err := h.accService.Submit(c.Request.Context(), req, files)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"id": id}))
}

// List handles GET /api/submissions with pagination, filters and search
// @Summary      List accreditations
// @Description  Retrieves a paginated, filterable list of accreditation records
// @Tags         submissions
// @Produce      json
// @Param        page    query  int     false  "Page number (default 1)"
// @Param        limit   query  int     false  "Items per page (default 50)"
// @Param        type    query  string  false  "Filter by type (Fibre|Energie)"
// @Param        status  query  string  false  "Filter by status ('all' disables)"
// @Param        search  query  string  false  "Substring match on name, email or phone"
// @Success      200  {object}  response.Response{data=service.ListResult}
// @Failure      500  {object}  response.Response
// @Router       /api/submissions [get]
func (h *AccreditationHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	result, err := h.accService.List(
		c.Request.Context(),
		params,
		c.Query("type"),
		c.Query("status"),
		c.Query("search"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch submissions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Update handles partial field updates from the admin table
// @Summary      Update an accreditation
// @Description  Applies an allow-listed partial update and returns the full record
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id       path  int                     true  "Accreditation ID"
// @Param        payload  body  map[string]interface{}  true  "Fields to update"
// @Success      200  {object}  response.Response{data=model.Accreditation}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/submissions/{id} [put]
func (h *AccreditationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	acc, err := h.accService.UpdateFields(c.Request.Context(), id, updates)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, acc))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Motif  string `json:"motif"`
}

// UpdateStatus handles the approve/refuse transition
// @Summary      Update accreditation status
// @Description  Transitions the record's status, notifying the applicant when it actually changes
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Accreditation ID"
// @Param        payload  body  updateStatusRequest  true  "New status and optional refusal reason"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/submissions/{id}/status [patch]
func (h *AccreditationHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.accService.UpdateStatus(c.Request.Context(), id, req.Status, req.Motif); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Status updated successfully"))
}

// Delete removes one record and its stored documents
// @Summary      Delete an accreditation
// @Tags         submissions
// @Produce      json
// @Param        id  path  int  true  "Accreditation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/submissions/{id} [delete]
func (h *AccreditationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.accService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Submission deleted successfully"))
}

type bulkDeleteRequest struct {
	Password string `json:"password"`
}

// BulkDeleteByType wipes every record (and file) of one accreditation type
// @Summary      Bulk delete by type
// @Description  Deletes all records of the given type after checking the admin password
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        type     path  string             true  "Accreditation type (Fibre|Energie)"
// @Param        payload  body  bulkDeleteRequest  true  "Admin password"
// @Success      200  {object}  response.Response{data=service.BulkDeleteResult}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/types/{type}/submissions [delete]
func (h *AccreditationHandler) BulkDeleteByType(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	result, err := h.accService.DeleteByType(c.Request.Context(), c.Param("type"), req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Import handles the bulk spreadsheet/CSV upload
// @Summary      Import accreditations
// @Description  Creates one record per valid row; malformed rows are reported without aborting the batch
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file    true   "XLSX or CSV file"
// @Param        type  formData  string  false  "Default accreditation type for imported rows"
// @Success      200  {object}  response.Response{data=service.ImportResult}
// @Failure      400  {object}  response.Response
// @Router       /api/submissions/import [post]
func (h *AccreditationHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing import file"))
		return
	}

	result, err := h.accService.Import(c.Request.Context(), file, c.PostForm("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ExportCSV streams the whole table as a UTF-8 CSV attachment
// @Summary      Export accreditations as CSV
// @Tags         submissions
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Router       /api/submissions/export/csv [get]
func (h *AccreditationHandler) ExportCSV(c *gin.Context) {
	data, err := h.accService.ExportCSV(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("accreditations_%d.csv", time.Now().UnixMilli())
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportExcel streams the whole table as an XLSX attachment
// @Summary      Export accreditations as XLSX
// @Tags         submissions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Router       /api/submissions/export/excel [get]
func (h *AccreditationHandler) ExportExcel(c *gin.Context) {
	data, err := h.accService.ExportExcel(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("accreditations_%d.xlsx", time.Now().UnixMilli())
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
