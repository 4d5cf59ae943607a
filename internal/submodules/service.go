package submodules

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	discovererMissingMessageConstant   = "repository discoverer not configured"
	repositoryNotFoundTemplateConstant = "no repository found: %w"
	enumerationFailureTemplateConstant = "failed to enumerate submodules: %w"
	defaultRepositoryPathConstant      = "."
	minimumConcurrencyConstant         = 1
	repositoryRootFieldConstant        = "repository"
	submoduleCountFieldConstant        = "submodules"
	updateCountFieldConstant           = "updates"
	filteredOutMessageConstant         = "submodule excluded by filter"
	enumerationCompleteMessageConstant = "enumerated submodules"
	collectionCompleteMessageConstant  = "collected submodule updates"
)

// ErrDiscovererNotConfigured indicates the service was created without a repository discoverer.
var ErrDiscovererNotConfigured = errors.New(discovererMissingMessageConstant)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Discoverer gitrepo.Discoverer
	Logger     *zap.Logger
}

// Options configure a collection run.
type Options struct {
	// RepositoryPath is where the upward repository search starts.
	RepositoryPath string
	// Filters keeps only submodules whose display name matches exactly; empty keeps all.
	Filters []string
	// Concurrency bounds how many submodules are diffed at once.
	Concurrency int
}

// Service discovers a superproject and collects the updates of its submodules.
type Service struct {
	discoverer gitrepo.Discoverer
	logger     *zap.Logger
	differ     *Differ
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{discoverer: dependencies.Discoverer, logger: logger, differ: NewDiffer(logger)}, nil
}

// Collect returns the updates of the selected submodules in enumeration order.
//
// Only repository discovery and submodule enumeration failures are returned;
// per-submodule problems degrade or skip that submodule.
func (service *Service) Collect(executionContext context.Context, options Options) ([]Update, error) {
	repositoryPath := options.RepositoryPath
	if len(repositoryPath) == 0 {
		repositoryPath = defaultRepositoryPathConstant
	}

	repository, discoverError := service.discoverer.Discover(executionContext, repositoryPath)
	if discoverError != nil {
		return nil, fmt.Errorf(repositoryNotFoundTemplateConstant, discoverError)
	}
	defer repository.Close()

	submodules, enumerationError := repository.Submodules(executionContext)
	if enumerationError != nil {
		return nil, fmt.Errorf(enumerationFailureTemplateConstant, enumerationError)
	}
	service.logger.Debug(enumerationCompleteMessageConstant, zap.String(repositoryRootFieldConstant, repository.Root()), zap.Int(submoduleCountFieldConstant, len(submodules)))

	selected := service.filter(submodules, options.Filters)

	concurrency := options.Concurrency
	if concurrency < minimumConcurrencyConstant {
		concurrency = minimumConcurrencyConstant
	}

	updates := make([]Update, len(selected))
	present := make([]bool, len(selected))
	var group errgroup.Group
	group.SetLimit(concurrency)
	for index, submodule := range selected {
		group.Go(func() error {
			updates[index], present[index] = service.differ.Diff(executionContext, submodule)
			return nil
		})
	}
	_ = group.Wait()

	collected := make([]Update, 0, len(selected))
	for index, update := range updates {
		if present[index] {
			collected = append(collected, update)
		}
	}
	service.logger.Debug(collectionCompleteMessageConstant, zap.Int(updateCountFieldConstant, len(collected)))
	return collected, nil
}

func (service *Service) filter(submodules []gitrepo.Submodule, filters []string) []gitrepo.Submodule {
	if len(filters) == 0 {
		return submodules
	}
	allowedNames := mapset.NewThreadUnsafeSet(filters...)
	selected := make([]gitrepo.Submodule, 0, len(submodules))
	for _, submodule := range submodules {
		name := DisplayName(submodule)
		if !allowedNames.ContainsOne(name) {
			service.logger.Debug(filteredOutMessageConstant, zap.String(submoduleFieldConstant, name))
			continue
		}
		selected = append(selected, submodule)
	}
	return selected
}
