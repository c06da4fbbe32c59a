package namespace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/gitlabapi"
	"github.com/temirov/repomirror/internal/naming"
)

const (
	subgroupServiceMissingMessageConstant = "subgroup service not configured"
	ownerSanitizationErrorTemplate        = "owner login %q sanitized to an empty subgroup path"
	subgroupLookupErrorTemplateConstant   = "unable to list subgroups of %d: %w"
	subgroupCreationErrorTemplateConstant = "unable to create subgroup %q under %d: %w"
	cacheKeyTemplateConstant              = "%d/%s"
	logMessageSubgroupCreatedConstant     = "Created destination subgroup"
	logMessageSubgroupReusedConstant      = "Reusing destination subgroup"
	logFieldSubgroupPathConstant          = "subgroup_path"
	logFieldSubgroupIDConstant            = "subgroup_id"
	logFieldParentGroupIDConstant         = "parent_group_id"
)

// Handle identifies a destination namespace. The zero value represents the
// token's personal namespace.
type Handle struct {
	GroupID int
}

// HasGroup reports whether the handle points at an explicit group.
func (handle Handle) HasGroup() bool {
	return handle.GroupID > 0
}

// SubgroupService is the narrow GitLab surface the resolver requires.
type SubgroupService interface {
	ListSubgroups(executionContext context.Context, parentGroupID int) ([]gitlabapi.Group, error)
	CreateSubgroup(executionContext context.Context, parentGroupID int, groupName string, groupPath string) (gitlabapi.Group, error)
}

var errSubgroupServiceMissing = errors.New(subgroupServiceMissingMessageConstant)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Logger *zap.Logger
	// RootGroupID is the configured target namespace; zero means the personal namespace.
	RootGroupID int
	// PreserveOwnerAsSubgroup places each repository in a subgroup named after its source owner.
	PreserveOwnerAsSubgroup bool
}

// Resolver determines the GitLab namespace a migrated repository lands in.
// Resolutions are cached per (root, owner) pair for the lifetime of the run.
type Resolver struct {
	logger                  *zap.Logger
	subgroups               SubgroupService
	rootGroupID             int
	preserveOwnerAsSubgroup bool

	cacheMutex    sync.Mutex
	resolvedByKey map[string]int
}

// NewResolver constructs a Resolver backed by the supplied subgroup service.
func NewResolver(subgroups SubgroupService, options ResolverOptions) (*Resolver, error) {
	if subgroups == nil {
		return nil, errSubgroupServiceMissing
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		logger:                  logger,
		subgroups:               subgroups,
		rootGroupID:             options.RootGroupID,
		preserveOwnerAsSubgroup: options.PreserveOwnerAsSubgroup,
		resolvedByKey:           map[string]int{},
	}, nil
}

// ResolveNamespace returns the namespace handle for repositories owned by the
// supplied source owner, creating the per-owner subgroup when required. At
// most one creation call is issued per (root, owner) pair per run.
func (resolver *Resolver) ResolveNamespace(executionContext context.Context, ownerLogin string) (Handle, error) {
	if resolver.rootGroupID <= 0 {
		return Handle{}, nil
	}
	if !resolver.preserveOwnerAsSubgroup {
		return Handle{GroupID: resolver.rootGroupID}, nil
	}

	sanitizedOwnerPath := naming.SanitizeSegment(ownerLogin, naming.DestinationPlatformGitLab)
	if len(sanitizedOwnerPath) == 0 {
		return Handle{}, fmt.Errorf(ownerSanitizationErrorTemplate, ownerLogin)
	}

	resolver.cacheMutex.Lock()
	defer resolver.cacheMutex.Unlock()

	cacheKey := fmt.Sprintf(cacheKeyTemplateConstant, resolver.rootGroupID, sanitizedOwnerPath)
	if cachedGroupID, cached := resolver.resolvedByKey[cacheKey]; cached {
		return Handle{GroupID: cachedGroupID}, nil
	}

	existingSubgroups, listError := resolver.subgroups.ListSubgroups(executionContext, resolver.rootGroupID)
	if listError != nil {
		return Handle{}, fmt.Errorf(subgroupLookupErrorTemplateConstant, resolver.rootGroupID, listError)
	}

	for _, existingSubgroup := range existingSubgroups {
		if !strings.EqualFold(existingSubgroup.Path, sanitizedOwnerPath) {
			continue
		}
		resolver.resolvedByKey[cacheKey] = existingSubgroup.ID
		resolver.logger.Debug(logMessageSubgroupReusedConstant,
			zap.String(logFieldSubgroupPathConstant, sanitizedOwnerPath),
			zap.Int(logFieldSubgroupIDConstant, existingSubgroup.ID),
			zap.Int(logFieldParentGroupIDConstant, resolver.rootGroupID),
		)
		return Handle{GroupID: existingSubgroup.ID}, nil
	}

	createdSubgroup, createError := resolver.subgroups.CreateSubgroup(executionContext, resolver.rootGroupID, ownerLogin, sanitizedOwnerPath)
	if createError != nil {
		return Handle{}, fmt.Errorf(subgroupCreationErrorTemplateConstant, sanitizedOwnerPath, resolver.rootGroupID, createError)
	}

	resolver.resolvedByKey[cacheKey] = createdSubgroup.ID
	resolver.logger.Info(logMessageSubgroupCreatedConstant,
		zap.String(logFieldSubgroupPathConstant, sanitizedOwnerPath),
		zap.Int(logFieldSubgroupIDConstant, createdSubgroup.ID),
		zap.Int(logFieldParentGroupIDConstant, resolver.rootGroupID),
	)

	return Handle{GroupID: createdSubgroup.ID}, nil
}
