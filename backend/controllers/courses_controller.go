package controllers

import (
	"fmt"
	"log"

	"arnhub/backend/middleware"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Catalog *services.CatalogService
	Logger  *log.Logger
}

func NewCoursesController(catalog *services.CatalogService, logger *log.Logger) *CoursesController {
	return &CoursesController{Catalog: catalog, Logger: logger}
}

type CourseInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category" validate:"max=100"`
	Difficulty  string `json:"difficulty" form:"difficulty" validate:"max=50"`
	Duration    string `json:"duration" form:"duration" validate:"max=50"`
	IsPublished bool   `json:"is_published" form:"is_published"`
}

func (in CourseInput) toService() services.CourseInput {
	return services.CourseInput{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		Duration:    in.Duration,
		IsPublished: in.IsPublished,
	}
}

type PublishInput struct {
	IsPublished *bool `json:"is_published" form:"is_published" validate:"required"`
}

// Browse lists the courses visible to the caller, split by ownership.
func (cc *CoursesController) Browse(c *fiber.Ctx) error {
	browse, err := cc.Catalog.BrowseCourses(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "/")
	}
	return utils.Success(c, fiber.StatusOK, browse)
}

func (cc *CoursesController) Detail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err, "/courses")
	}

	course, err := cc.Catalog.CourseDetail(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "/courses")
	}
	return utils.Success(c, fiber.StatusOK, course)
}

func (cc *CoursesController) Lesson(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err, "/courses")
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return respondError(c, cc.Logger, err, "/courses")
	}

	course, lesson, err := cc.Catalog.ViewLesson(c.UserContext(), courseID, lessonID, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, fmt.Sprintf("/course/%d", courseID))
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"course": course, "lesson": lesson})
}

// Managed lists the courses the caller can administer.
func (cc *CoursesController) Managed(c *fiber.Ctx) error {
	courses, err := cc.Catalog.ManagedCourses(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin")
	}
	return utils.Success(c, fiber.StatusOK, courses)
}

func (cc *CoursesController) Create(c *fiber.Ctx) error {
	var input CourseInput
	if err := bind(c, &input); err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	course, err := cc.Catalog.CreateCourse(c.UserContext(), input.toService(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	return utils.Flash(c, fiber.StatusCreated, utils.FlashSuccess, "Course created successfully!", "/admin/courses", course)
}

func (cc *CoursesController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	var input CourseInput
	if err := bind(c, &input); err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	course, err := cc.Catalog.UpdateCourse(c.UserContext(), id, input.toService(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, "Course updated successfully!", "/admin/courses", course)
}

func (cc *CoursesController) Publish(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	var input PublishInput
	if err := bind(c, &input); err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	course, err := cc.Catalog.SetCoursePublished(c.UserContext(), id, *input.IsPublished, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	message := "Course unpublished."
	if course.IsPublished {
		message = "Course published."
	}
	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, message, "/admin/courses", course)
}

func (cc *CoursesController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	if err := cc.Catalog.DeleteCourse(c.UserContext(), id, middleware.CurrentUser(c)); err != nil {
		return respondError(c, cc.Logger, err, "/admin/courses")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, "Course deleted successfully!", "/admin/courses")
}
