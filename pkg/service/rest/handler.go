//
//  Copyright © Manetu Inc. All rights reserved.
//

package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/manetu/tablevalidator/pkg/table"
	"github.com/manetu/tablevalidator/pkg/validator"
)

// TableBody is one table of a validation request.  Rows[0] is the header and
// Rows[1] the rule row.
type TableBody struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Tables []TableBody `json:"tables"`
}

// ValidateResponse is the 200 response of POST /v1/validate.
type ValidateResponse struct {
	RunID         string                    `json:"run_id"`
	Valid         bool                      `json:"valid"`
	InvalidTables []string                  `json:"invalid_tables"`
	Errors        []*common.ValidationError `json:"errors"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	validator *validator.Validator
}

func (h *handler) validate(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Tables) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no tables to validate"})
	}

	tables := make([]*table.Table, 0, len(req.Tables))
	for i, t := range req.Tables {
		switch {
		case t.Name == "":
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("table %d has no name", i+1)})
		case len(t.Rows) < 2:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("table %s needs a header row and a rule row", t.Name)})
		}
		tables = append(tables, table.New(t.Name, t.Rows))
	}

	result, err := h.validator.Validate(c.Request().Context(), tables)
	if err != nil {
		var se *common.StructuralError
		if errors.As(err, &se) {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: se.Error()})
		}
		logger.Errorf(agent, "Validate", "validation failed: %+v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, ValidateResponse{
		RunID:         result.RunID,
		Valid:         result.Valid(),
		InvalidTables: result.InvalidTables,
		Errors:        result.Errors,
	})
}
