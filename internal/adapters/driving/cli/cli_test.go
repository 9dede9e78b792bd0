package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	requests []driving.SyncRequest
	result   *driving.SyncResult
	status   *driving.SyncStatus
	err      error
}

func (m *mockSyncOrchestrator) Run(_ context.Context, req driving.SyncRequest) (*driving.SyncResult, error) {
	m.requests = append(m.requests, req)
	if _, err := domain.ParseSince(req.Since); err != nil {
		return nil, err
	}
	return m.result, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	if m.status == nil {
		return nil, domain.ErrNotFound
	}
	return m.status, nil
}

// mockCatalogueService implements driving.CatalogueService for testing.
type mockCatalogueService struct {
	entities []domain.Entity
	err      error
}

func (m *mockCatalogueService) List(_ context.Context) ([]domain.Entity, error) {
	return m.entities, m.err
}

func (m *mockCatalogueService) Get(_ context.Context, id int64) (*domain.Entity, error) {
	for i := range m.entities {
		if m.entities[i].ExternalID == id {
			return &m.entities[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogueService) Count(_ context.Context) (int, error) {
	return len(m.entities), m.err
}

// mockIdentityService implements driving.IdentityService for testing.
type mockIdentityService struct {
	principal *domain.Principal
	err       error
}

func (m *mockIdentityService) Me(_ context.Context) (*domain.Principal, error) {
	return m.principal, m.err
}

// setupCLITest clears package state and restores it afterwards.
func setupCLITest(t *testing.T) {
	t.Helper()

	oldBootstrap := bootstrap
	oldSync, oldCatalogue, oldIdentity := syncOrchestrator, catalogueService, identityService
	oldTerminal := isTerminal
	oldTextfile := metricsTextfile

	reset := func() {
		syncSince, syncDryRun, listJSON, versionJSON = "", false, false, false
		verbose, configPath = false, ""
	}
	reset()
	bootstrap = nil
	syncOrchestrator, catalogueService, identityService = nil, nil, nil
	isTerminal = func(io.Writer) bool { return false }
	metricsTextfile = ""

	t.Cleanup(func() {
		reset()
		bootstrap = oldBootstrap
		syncOrchestrator, catalogueService, identityService = oldSync, oldCatalogue, oldIdentity
		isTerminal = oldTerminal
		metricsTextfile = oldTextfile
		rootCmd.SetArgs(nil)
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
