package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"travelmind/pkg/utils"
)

// respondBindError turns gin binding failures into a 400 with one detail per
// failed field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
		utils.RespondErrorWithReason(c, http.StatusBadRequest, utils.ReasonBadRequest, "Invalid request format", details)
		return
	}
	utils.RespondErrorWithReason(c, http.StatusBadRequest, utils.ReasonBadRequest, "Invalid request format", []string{err.Error()})
}
