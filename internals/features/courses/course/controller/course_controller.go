package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"credilink_backend/internals/features/courses/course/dto"
	"credilink_backend/internals/features/courses/course/service"
	helper "credilink_backend/internals/helpers"
)

type CourseController struct {
	Service  *service.CourseService
	Validate *validator.Validate
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{
		Service:  service.NewCourseService(db),
		Validate: validator.New(),
	}
}

/* ==========================
   Public reads
========================== */

// GET /courses
func (ctl *CourseController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	courses, total, err := ctl.Service.List(c.Context(), c.Query("search"), paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	items := make([]dto.CourseSummaryResponse, 0, len(courses))
	for i := range courses {
		items = append(items, dto.NewCourseSummaryResponse(&courses[i]))
	}
	return helper.Success(c, "Courses fetched", fiber.Map{
		"courses":    items,
		"pagination": helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage),
	})
}

// GET /courses/:id
func (ctl *CourseController) GetByID(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	course, err := ctl.Service.GetByID(c.Context(), courseID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Course fetched", dto.NewCourseDetailResponse(course))
}

/* ==========================
   Admin CRUD
========================== */

// POST /courses
func (ctl *CourseController) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	course, err := ctl.Service.Create(c.Context(), &req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Course created", dto.NewCourseDetailResponse(course))
}

// PUT /courses/:id
func (ctl *CourseController) Update(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	course, err := ctl.Service.Update(c.Context(), courseID, &req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Course updated", dto.NewCourseDetailResponse(course))
}

// DELETE /courses/:id
func (ctl *CourseController) Delete(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	if err := ctl.Service.Delete(c.Context(), courseID); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Course deleted", nil)
}

// POST /courses/:id/cover: stores the uploaded image as webp
func (ctl *CourseController) UploadCover(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "cover file is required")
	}

	path, err := helper.SaveWebPUpload("courses", fileHeader)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	course, err := ctl.Service.Update(c.Context(), courseID, &dto.UpdateCourseRequest{CoverImage: &path})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Cover uploaded", fiber.Map{"cover_image": course.CourseCoverImage})
}
