package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suitewell/suitewell-backend/internal/services"
)

type TemplateHandler struct {
	templateService services.TemplateService
}

func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (th *TemplateHandler) GetTemplate(c *gin.Context) {
	slug := c.Param("slug")
	tmpl, ok := th.templateService.Get(slug)
	if !ok {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("unknown template %q", slug))
		return
	}
	RespondOK(c, tmpl)
}

func (th *TemplateHandler) ListTemplates(c *gin.Context) {
	RespondOK(c, gin.H{"templates": th.templateService.List()})
}
