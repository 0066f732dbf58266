// Package api exposes the knowledge store's operation surface over HTTP.
// Handlers stay thin: bind the request, call the service, map the typed
// error onto a status code.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knowledge-store/backend/internal/graph"
	"knowledge-store/backend/internal/knowledge"
	"knowledge-store/backend/internal/metrics"
	"knowledge-store/backend/pkg/kgerrors"
	"knowledge-store/backend/pkg/logger"
)

// Handlers carries the dependencies shared by all routes.
type Handlers struct {
	svc          *knowledge.Service
	schemaDir    string
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(svc *knowledge.Service, schemaDir string, queryTimeout time.Duration) *Handlers {
	return &Handlers{
		svc:          svc,
		schemaDir:    schemaDir,
		queryTimeout: queryTimeout,
		logger:       logger.Component("api"),
	}
}

// Register mounts all routes on the router.
func (h *Handlers) Register(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/entities", h.createEntity)
		api.GET("/entities", h.listEntities)
		api.GET("/entities/:id", h.getEntity)
		api.PATCH("/entities/:id", h.updateEntity)
		api.DELETE("/entities/:id", h.deleteEntity)
		api.GET("/entities/:id/tier/:tier", h.getEntityWithTier)
		api.GET("/search", h.searchEntities)

		api.POST("/relationships", h.createRelationship)
		api.GET("/relationships/:id", h.getRelationship)
		api.PATCH("/relationships/:id", h.updateRelationship)
		api.DELETE("/relationships/:id", h.deleteRelationship)

		api.GET("/concepts/:id/symbols", h.findSymbolsForConcept)
		api.GET("/symbols/:id/concepts", h.findConceptsForSymbol)
		api.GET("/concepts/:id/interpretations", h.findCrossDomainMappings)
		api.GET("/paths", h.findPath)

		api.GET("/schema/entity-types", h.listEntityTypes)
		api.GET("/schema/relationship-types", h.listRelationshipTypes)
		api.POST("/schema/reload", h.reloadSchema)
	}
}

func (h *Handlers) createEntity(c *gin.Context) {
	var req struct {
		Type       string         `json:"type" binding:"required"`
		Properties map[string]any `json:"properties" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.svc.CreateEntity(c.Request.Context(), req.Type, req.Properties)
	if err != nil {
		h.writeError(c, "create_entity", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("create_entity", "ok").Inc()
	c.JSON(http.StatusCreated, node)
}

func (h *Handlers) getEntity(c *gin.Context) {
	node, err := h.svc.GetEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get_entity", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("get_entity", "ok").Inc()
	c.JSON(http.StatusOK, node)
}

func (h *Handlers) updateEntity(c *gin.Context) {
	var req struct {
		Properties map[string]any `json:"properties" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.svc.UpdateEntity(c.Request.Context(), c.Param("id"), req.Properties)
	if err != nil {
		h.writeError(c, "update_entity", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("update_entity", "ok").Inc()
	c.JSON(http.StatusOK, node)
}

func (h *Handlers) deleteEntity(c *gin.Context) {
	if err := h.svc.DeleteEntity(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete_entity", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("delete_entity", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handlers) listEntities(c *gin.Context) {
	page := pageFromQuery(c)
	typeFilter := c.Query("type")

	propFilters := map[string]any{}
	if domain := c.Query("domain"); domain != "" {
		propFilters["domain"] = domain
	}
	if name := c.Query("name"); name != "" {
		propFilters["name"] = name
	}

	list, err := h.svc.ListEntities(c.Request.Context(), typeFilter, propFilters, page)
	if err != nil {
		h.writeError(c, "list_entities", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("list_entities", "ok").Inc()
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) searchEntities(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	nodes, err := h.svc.SearchEntities(c.Request.Context(), query, c.QueryArray("entity_type"), limit)
	if err != nil {
		h.writeError(c, "search_entities", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("search_entities", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"query": query, "results": nodes, "count": len(nodes)})
}

func (h *Handlers) createRelationship(c *gin.Context) {
	var req struct {
		Type       string         `json:"type" binding:"required"`
		FromID     string         `json:"from_id" binding:"required"`
		ToID       string         `json:"to_id" binding:"required"`
		Properties map[string]any `json:"properties"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Properties == nil {
		req.Properties = map[string]any{}
	}

	edge, err := h.svc.CreateRelationship(c.Request.Context(), req.Type, req.FromID, req.ToID, req.Properties)
	if err != nil {
		h.writeError(c, "create_relationship", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("create_relationship", "ok").Inc()
	c.JSON(http.StatusCreated, edge)
}

func (h *Handlers) getRelationship(c *gin.Context) {
	edge, err := h.svc.GetRelationship(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get_relationship", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("get_relationship", "ok").Inc()
	c.JSON(http.StatusOK, edge)
}

func (h *Handlers) updateRelationship(c *gin.Context) {
	var req struct {
		Properties map[string]any `json:"properties" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edge, err := h.svc.UpdateRelationship(c.Request.Context(), c.Param("id"), req.Properties)
	if err != nil {
		h.writeError(c, "update_relationship", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("update_relationship", "ok").Inc()
	c.JSON(http.StatusOK, edge)
}

func (h *Handlers) deleteRelationship(c *gin.Context) {
	if err := h.svc.DeleteRelationship(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete_relationship", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("delete_relationship", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handlers) findSymbolsForConcept(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	list, err := h.svc.FindSymbolsForConcept(ctx, c.Param("id"), pageFromQuery(c))
	if err != nil {
		h.writeError(c, "find_symbols_for_concept", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("find_symbols_for_concept", "ok").Inc()
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) findConceptsForSymbol(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	list, err := h.svc.FindConceptsForSymbol(ctx, c.Param("id"), pageFromQuery(c))
	if err != nil {
		h.writeError(c, "find_concepts_for_symbol", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("find_concepts_for_symbol", "ok").Inc()
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) getEntityWithTier(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	entity, err := h.svc.GetEntityWithTier(ctx, c.Param("id"), c.Param("tier"))
	if err != nil {
		h.writeError(c, "get_entity_with_tier", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("get_entity_with_tier", "ok").Inc()
	c.JSON(http.StatusOK, entity)
}

func (h *Handlers) findCrossDomainMappings(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	list, err := h.svc.FindCrossDomainMappings(ctx, c.Param("id"), c.Query("domain"), pageFromQuery(c))
	if err != nil {
		h.writeError(c, "find_cross_domain_mappings", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("find_cross_domain_mappings", "ok").Inc()
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) findPath(c *gin.Context) {
	fromID := c.Query("from")
	toID := c.Query("to")
	if fromID == "" || toID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameters from and to are required"})
		return
	}
	maxDepth, err := strconv.Atoi(c.DefaultQuery("max_depth", "3"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_depth must be an integer"})
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	path, err := h.svc.FindPath(ctx, fromID, toID, maxDepth, c.QueryArray("relationship_type"))
	if err != nil {
		h.writeError(c, "find_path", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("find_path", "ok").Inc()
	c.JSON(http.StatusOK, path)
}

func (h *Handlers) listEntityTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entity_types": h.svc.Registry().EntityTypes()})
}

func (h *Handlers) listRelationshipTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"relationship_types": h.svc.Registry().RelationshipTypes()})
}

func (h *Handlers) reloadSchema(c *gin.Context) {
	if err := h.svc.ReloadSchema(h.schemaDir); err != nil {
		h.writeError(c, "reload_schema", err)
		return
	}
	metrics.OperationsTotal.WithLabelValues("reload_schema", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

// queryContext bounds long-running traversals with the configured timeout;
// cancellation rolls back the store transaction.
func (h *Handlers) queryContext(c *gin.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.queryTimeout)
}

func pageFromQuery(c *gin.Context) graph.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return graph.Page{Number: number, Size: size}
}

// writeError maps the error taxonomy onto HTTP statuses. Every response
// carries the error kind so callers can handle failures programmatically.
func (h *Handlers) writeError(c *gin.Context, operation string, err error) {
	kind := kgerrors.KindOf(err)
	metrics.OperationsTotal.WithLabelValues(operation, "error").Inc()

	body := gin.H{"error": err.Error(), "kind": string(kind)}

	var sv *kgerrors.SchemaViolation
	if errors.As(err, &sv) {
		body["violations"] = sv.Violations
	}

	var status int
	switch kind {
	case kgerrors.KindSchemaViolation, kgerrors.KindUnknownType, kgerrors.KindEndpointTypeMismatch,
		kgerrors.KindInvalidTier, kgerrors.KindTierNotApplicable, kgerrors.KindDepthExceeded,
		kgerrors.KindUnknownParent, kgerrors.KindDuplicateType, kgerrors.KindCyclicInheritance:
		status = http.StatusBadRequest
		metrics.ValidationFailures.WithLabelValues(string(kind)).Inc()
	case kgerrors.KindNotFound:
		status = http.StatusNotFound
	case kgerrors.KindConstraintViolation:
		status = http.StatusConflict
	case kgerrors.KindStoreUnavailable:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
		body = gin.H{"error": "internal error"}
		h.logger.Error("Operation failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}

	c.JSON(status, body)
}
