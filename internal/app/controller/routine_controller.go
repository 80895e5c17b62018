package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/service"
)

type RoutineController struct {
	routineService service.RoutineService
}

func NewRoutineController(routineService service.RoutineService) *RoutineController {
	return &RoutineController{routineService: routineService}
}

type RoutineStepRequest struct {
	StepOrder   int    `json:"StepOrder"`
	Name        string `json:"Name" binding:"required"`
	Instruction string `json:"Instruction"`
	ProductIDs  []uint `json:"ProductIds"`
}

type RoutineRequest struct {
	SkinTypeID  uint                 `json:"SkinTypeId" binding:"required"`
	Period      model.RoutinePeriod  `json:"Period" binding:"required"`
	Title       string               `json:"Title" binding:"required"`
	Description string               `json:"Description"`
	Steps       []RoutineStepRequest `json:"Steps" binding:"dive"`
}

type StepProductsRequest struct {
	ProductIDs []uint `json:"ProductIds"`
}

func (req RoutineRequest) toInput() service.RoutineInput {
	steps := make([]service.RoutineStepInput, 0, len(req.Steps))
	for _, s := range req.Steps {
		steps = append(steps, service.RoutineStepInput(s))
	}
	return service.RoutineInput{
		SkinTypeID:  req.SkinTypeID,
		Period:      req.Period,
		Title:       req.Title,
		Description: req.Description,
		Steps:       steps,
	}
}

// GetRoutines lists routines, filtered by skin type and period when given
// GET /api/Routine?skinTypeId=&period=
func (ctrl *RoutineController) GetRoutines(c *gin.Context) {
	var (
		routines []model.Routine
		err      error
	)
	if skinTypeID := queryUint(c, "skinTypeId"); skinTypeID != nil {
		var period *model.RoutinePeriod
		if raw := c.Query("period"); raw != "" {
			p := model.RoutinePeriod(raw)
			period = &p
		}
		routines, err = ctrl.routineService.GetRoutinesBySkinType(*skinTypeID, period)
	} else {
		routines, err = ctrl.routineService.GetAllRoutines()
	}
	if err != nil {
		respondError(c, err, "list routines", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Routines": routines, "Count": len(routines)})
}

// GetRoutine GET /api/Routine/:id
func (ctrl *RoutineController) GetRoutine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	routine, err := ctrl.routineService.GetRoutineByID(id)
	if err != nil {
		respondError(c, err, "get routine", map[string]interface{}{"routine_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Routine": routine})
}

// CreateRoutine POST /api/Routine
func (ctrl *RoutineController) CreateRoutine(c *gin.Context) {
	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	routine, err := ctrl.routineService.CreateRoutine(req.toInput())
	if err != nil {
		respondError(c, err, "create routine", map[string]interface{}{"skin_type_id": req.SkinTypeID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Routine": routine})
}

// UpdateRoutine changes the routine header
// PUT /api/Routine/:id
func (ctrl *RoutineController) UpdateRoutine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	routine, err := ctrl.routineService.UpdateRoutine(id, req.toInput())
	if err != nil {
		respondError(c, err, "update routine", map[string]interface{}{"routine_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Routine": routine})
}

// DeleteRoutine DELETE /api/Routine/:id
func (ctrl *RoutineController) DeleteRoutine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.routineService.DeleteRoutine(id); err != nil {
		respondError(c, err, "delete routine", map[string]interface{}{"routine_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Routine deleted"})
}

// AddStep POST /api/Routine/:id/steps
func (ctrl *RoutineController) AddStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RoutineStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	step, err := ctrl.routineService.AddStep(id, service.RoutineStepInput(req))
	if err != nil {
		respondError(c, err, "add routine step", map[string]interface{}{"routine_id": id})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Step": step})
}

// UpdateStep PUT /api/RoutineStep/:id
func (ctrl *RoutineController) UpdateStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RoutineStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	step, err := ctrl.routineService.UpdateStep(id, service.RoutineStepInput(req))
	if err != nil {
		respondError(c, err, "update routine step", map[string]interface{}{"step_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Step": step})
}

// DeleteStep DELETE /api/RoutineStep/:id
func (ctrl *RoutineController) DeleteStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.routineService.DeleteStep(id); err != nil {
		respondError(c, err, "delete routine step", map[string]interface{}{"step_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Routine step deleted"})
}

// SetStepProducts PUT /api/RoutineStep/:id/products
func (ctrl *RoutineController) SetStepProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req StepProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	step, err := ctrl.routineService.SetStepProducts(id, req.ProductIDs)
	if err != nil {
		respondError(c, err, "set routine step products", map[string]interface{}{"step_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Step": step})
}
