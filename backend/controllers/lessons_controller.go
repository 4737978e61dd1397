package controllers

import (
	"fmt"
	"io"
	"log"
	"strings"

	"arnhub/backend/middleware"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LessonsController struct {
	Catalog *services.CatalogService
	Logger  *log.Logger
}

func NewLessonsController(catalog *services.CatalogService, logger *log.Logger) *LessonsController {
	return &LessonsController{Catalog: catalog, Logger: logger}
}

// LessonInput carries the lesson fields. Sections is the JSON document of
// content blocks as a string, as sent by the lesson editor form.
type LessonInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Sections    string `json:"sections" form:"sections"`
	IsPublished bool   `json:"is_published" form:"is_published"`
}

// videoUpload opens the optional "video" file of a multipart request. The
// returned closer must be called once the upload has been stored.
func videoUpload(c *fiber.Ctx) (*services.VideoUpload, io.Closer, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, &services.Error{Kind: services.ErrValidation, Message: "Invalid upload."}
	}
	files := form.File["video"]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, nil, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	return &services.VideoUpload{Filename: fh.Filename, Size: fh.Size, Reader: f}, f, nil
}

func (lc *LessonsController) readInput(c *fiber.Ctx) (services.LessonInput, io.Closer, error) {
	var input LessonInput
	if err := bind(c, &input); err != nil {
		return services.LessonInput{}, nil, err
	}

	video, closer, err := videoUpload(c)
	if err != nil {
		return services.LessonInput{}, nil, err
	}

	return services.LessonInput{
		Title:       input.Title,
		Sections:    input.Sections,
		IsPublished: input.IsPublished,
		Video:       video,
	}, closer, nil
}

// List returns a course with all of its lessons, published or not.
func (lc *LessonsController) List(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}

	course, err := lc.Catalog.CourseLessons(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}
	return utils.Success(c, fiber.StatusOK, course)
}

func (lc *LessonsController) Create(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}
	back := fmt.Sprintf("/admin/courses/%d/lessons", courseID)

	input, closer, err := lc.readInput(c)
	if err != nil {
		return respondError(c, lc.Logger, err, back)
	}
	if closer != nil {
		defer closer.Close()
	}

	lesson, err := lc.Catalog.CreateLesson(c.UserContext(), courseID, input, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, lc.Logger, err, back)
	}

	return utils.Flash(c, fiber.StatusCreated, utils.FlashSuccess, "Lesson added successfully!", back, lesson)
}

func (lc *LessonsController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}

	input, closer, err := lc.readInput(c)
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}
	if closer != nil {
		defer closer.Close()
	}

	lesson, err := lc.Catalog.UpdateLesson(c.UserContext(), id, input, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, "Lesson updated successfully!",
		fmt.Sprintf("/admin/courses/%d/lessons", lesson.CourseID), lesson)
}

func (lc *LessonsController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}

	courseID, err := lc.Catalog.DeleteLesson(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, lc.Logger, err, "/admin/courses")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, "Lesson deleted successfully!",
		fmt.Sprintf("/admin/courses/%d/lessons", courseID))
}
