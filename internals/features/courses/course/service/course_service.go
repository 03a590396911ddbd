package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"credilink_backend/internals/features/courses/course/dto"
	courseModel "credilink_backend/internals/features/courses/course/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	"credilink_backend/internals/helpers/apperr"
)

/* =========================================================
   SERVICE: course catalog (admin CRUD + public reads)
========================================================= */

type CourseService struct {
	DB *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{DB: db}
}

func (s *CourseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*courseModel.CourseModel, error) {
	modules := dto.ModulesToModel(req.Modules)
	sortModules(modules)

	course := courseModel.CourseModel{
		CourseTitle:       strings.TrimSpace(req.Title),
		CourseDescription: req.Description,
		CourseCoverImage:  req.CoverImage,
		CourseInstructor:  req.Instructor,
		CourseLevel:       req.Level,
		CourseDurationHrs: req.DurationHrs,
		CourseModules:     datatypes.NewJSONType(modules),
	}
	if req.FinalTest != nil {
		course.CourseFinalTest = datatypes.NewJSONType(req.FinalTest.ToModel())
	}
	if !course.ValidateModules() {
		return nil, apperr.InvalidArgument("module ids must be present and unique within the course")
	}

	if err := s.DB.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}
	log.Printf("[INFO] course created: %s (%s)", course.CourseTitle, course.CourseID)
	return &course, nil
}

func (s *CourseService) Update(ctx context.Context, courseID uuid.UUID, req *dto.UpdateCourseRequest) (*courseModel.CourseModel, error) {
	var course courseModel.CourseModel

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("course not found")
			}
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["course_title"] = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			updates["course_description"] = *req.Description
		}
		if req.CoverImage != nil {
			updates["course_cover_image"] = *req.CoverImage
		}
		if req.Instructor != nil {
			updates["course_instructor"] = *req.Instructor
		}
		if req.Level != nil {
			updates["course_level"] = *req.Level
		}
		if req.DurationHrs != nil {
			updates["course_duration_hours"] = *req.DurationHrs
		}
		if req.Modules != nil {
			modules := dto.ModulesToModel(req.Modules)
			sortModules(modules)
			course.CourseModules = datatypes.NewJSONType(modules)
			if !course.ValidateModules() {
				return apperr.InvalidArgument("module ids must be present and unique within the course")
			}
			updates["course_modules"] = course.CourseModules
		}
		if req.FinalTest != nil {
			course.CourseFinalTest = datatypes.NewJSONType(req.FinalTest.ToModel())
			updates["course_final_test"] = course.CourseFinalTest
		}
		if len(updates) == 0 {
			return nil
		}

		return tx.Model(&course).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete soft-deletes the course and hard-deletes its progress records in the
// same transaction. Issued credentials are history and stay untouched.
func (s *CourseService) Delete(ctx context.Context, courseID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course courseModel.CourseModel
		if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("course not found")
			}
			return err
		}

		res := tx.Where("progress_course_id = ?", courseID).
			Delete(&progressModel.ProgressModel{})
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Delete(&course).Error; err != nil {
			return err
		}
		log.Printf("[INFO] course %s deleted (%d progress records removed)", courseID, res.RowsAffected)
		return nil
	})
}

func (s *CourseService) GetByID(ctx context.Context, courseID uuid.UUID) (*courseModel.CourseModel, error) {
	var course courseModel.CourseModel
	if err := s.DB.WithContext(ctx).First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) List(ctx context.Context, search string, offset, limit int) ([]courseModel.CourseModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&courseModel.CourseModel{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(course_title) LIKE ? OR LOWER(course_description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []courseModel.CourseModel
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func sortModules(modules []courseModel.CourseModule) {
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})
}
