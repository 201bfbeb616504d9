package handler

import (
	"net/http"

	"mosaic/model/model"

	"github.com/gin-gonic/gin"
)

// writeScope pulls the (tenant, provider) pair every record endpoint is
// scoped to.
func writeScope(c *gin.Context) (string, string, bool) {
	linkedUserID := c.Query("linked_user_id")
	providerSlug := c.Query("provider_slug")
	if linkedUserID == "" || providerSlug == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"error": "Missing linked_user_id or provider_slug."})
		return "", "", false
	}

	return linkedUserID, providerSlug, true
}

func includeRaw(c *gin.Context) bool {
	return c.Query("remote_data") == "true"
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func writeGetResponse(c *gin.Context, status int, payload interface{}) {
	if status == http.StatusFound {
		c.JSON(http.StatusOK, payload)
		return
	}

	c.AbortWithStatusJSON(status, gin.H{"error": "Failed to get record."})
}

func CreateCompanyHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var input model.UnifiedCompany
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid company payload."})
		return
	}

	company, status, err := recordsService.AddCompany(linkedUserID, providerSlug, &input)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, company)
}

func CreateCompaniesHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var inputs []model.UnifiedCompany
	if err := c.BindJSON(&inputs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid company batch payload."})
		return
	}

	companies, status, err := recordsService.AddCompanies(linkedUserID, providerSlug, inputs)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, companies)
}

func GetCompanyHandler(c *gin.Context) {
	company, status := recordsService.GetCompany(c.Params.ByName("id"), includeRaw(c))
	writeGetResponse(c, status, company)
}

func GetCompaniesHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	companies, status := recordsService.GetCompanies(providerSlug, linkedUserID, includeRaw(c))
	writeGetResponse(c, status, companies)
}

func CreateUserHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var input model.UnifiedUser
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user payload."})
		return
	}

	user, status, err := recordsService.AddUser(linkedUserID, providerSlug, &input)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, user)
}

func CreateUsersHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var inputs []model.UnifiedUser
	if err := c.BindJSON(&inputs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user batch payload."})
		return
	}

	users, status, err := recordsService.AddUsers(linkedUserID, providerSlug, inputs)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, users)
}

func GetUserHandler(c *gin.Context) {
	user, status := recordsService.GetUser(c.Params.ByName("id"), includeRaw(c))
	writeGetResponse(c, status, user)
}

func GetUsersHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	users, status := recordsService.GetUsers(providerSlug, linkedUserID, includeRaw(c))
	writeGetResponse(c, status, users)
}

func CreateNoteHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var input model.UnifiedNote
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid note payload."})
		return
	}

	note, status, err := recordsService.AddNote(linkedUserID, providerSlug, &input)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, note)
}

func CreateNotesHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var inputs []model.UnifiedNote
	if err := c.BindJSON(&inputs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid note batch payload."})
		return
	}

	notes, status, err := recordsService.AddNotes(linkedUserID, providerSlug, inputs)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, notes)
}

func GetNoteHandler(c *gin.Context) {
	note, status := recordsService.GetNote(c.Params.ByName("id"), includeRaw(c))
	writeGetResponse(c, status, note)
}

func GetNotesHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	notes, status := recordsService.GetNotes(providerSlug, linkedUserID, includeRaw(c))
	writeGetResponse(c, status, notes)
}

func CreateCommentHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var input model.UnifiedComment
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid comment payload."})
		return
	}

	comment, status, err := recordsService.AddComment(linkedUserID, providerSlug, &input)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, comment)
}

func CreateCommentsHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	var inputs []model.UnifiedComment
	if err := c.BindJSON(&inputs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid comment batch payload."})
		return
	}

	comments, status, err := recordsService.AddComments(linkedUserID, providerSlug, inputs)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, comments)
}

func GetCommentHandler(c *gin.Context) {
	comment, status := recordsService.GetComment(c.Params.ByName("id"), includeRaw(c))
	writeGetResponse(c, status, comment)
}

func GetCommentsHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}

	comments, status := recordsService.GetComments(providerSlug, linkedUserID, includeRaw(c))
	writeGetResponse(c, status, comments)
}
