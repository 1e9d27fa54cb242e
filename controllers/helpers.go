package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/forum/middleware"
	"github.com/campuslink/forum/permissions"
	"github.com/campuslink/forum/utils"
)

func principal(ctx *gin.Context) permissions.Principal {
	return middleware.Principal(ctx)
}

// idParam parses the numeric :id path parameter, replying 404 on garbage so
// unknown and malformed ids look the same to the caller.
func idParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return 0, false
	}
	return uint(id), true
}

// checkRules runs the request-level predicates, replying 403 on failure.
func checkRules(ctx *gin.Context, rules []permissions.Rule) bool {
	if !permissions.Check(rules, ctx.Request.Method, principal(ctx)) {
		utils.Error(ctx, http.StatusForbidden, 40301, "you do not have permission to perform this action")
		return false
	}
	return true
}

// checkObjectRules runs the object-level predicates against the fetched
// target, replying 403 on failure.
func checkObjectRules(ctx *gin.Context, rules []permissions.Rule, obj permissions.Ownable) bool {
	if !permissions.CheckObject(rules, ctx.Request.Method, principal(ctx), obj) {
		utils.Error(ctx, http.StatusForbidden, 40302, "you do not have permission to perform this action")
		return false
	}
	return true
}
