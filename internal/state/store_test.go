package state

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

func TestAddGondola_NormalizesCollections(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddGondola(entity.Gondola{ID: uuid.New(), SerialNumber: "GND-1"})

	gondolas := s.Gondolas()
	require.Len(t, gondolas, 1)
	assert.NotNil(t, gondolas[0].Photos)
	assert.NotNil(t, gondolas[0].Documents)
}

func TestUpdateGondola_PreservesArraysOnPartialUpdate(t *testing.T) {
	t.Parallel()

	s := NewStore()
	id := uuid.New()
	s.AddGondola(entity.Gondola{
		ID:           id,
		SerialNumber: "GND-1",
		Status:       entity.GondolaStatusDeployed,
		Photos: []entity.Photo{
			{ID: uuid.New(), URL: "/api/v1/photos/a/download"},
			{ID: uuid.New(), URL: "/api/v1/photos/b/download"},
		},
		Documents: []entity.Document{
			{ID: uuid.New(), Name: "swp.pdf"},
		},
	})

	// Status-only update: photos and documents must survive.
	newStatus := entity.GondolaStatusMaintenance
	s.UpdateGondola(id.String(), GondolaPatch{Status: &newStatus})

	gondolas := s.Gondolas()
	require.Len(t, gondolas, 1)
	assert.Equal(t, entity.GondolaStatusMaintenance, gondolas[0].Status)
	assert.Len(t, gondolas[0].Photos, 2)
	assert.Len(t, gondolas[0].Documents, 1)

	// Explicit replacement does replace.
	s.UpdateGondola(id.String(), GondolaPatch{Photos: []entity.Photo{}})
	gondolas = s.Gondolas()
	assert.Len(t, gondolas[0].Photos, 0)
	assert.Len(t, gondolas[0].Documents, 1)
}

func TestUpdateGondola_DoesNotReorder(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		s.AddGondola(entity.Gondola{ID: id, SerialNumber: "GND-" + string(rune('A'+i))})
	}

	serial := "GND-MID"
	s.UpdateGondola(ids[1].String(), GondolaPatch{SerialNumber: &serial})

	gondolas := s.Gondolas()
	require.Len(t, gondolas, 3)
	assert.Equal(t, ids[0], gondolas[0].ID)
	assert.Equal(t, ids[1], gondolas[1].ID)
	assert.Equal(t, ids[2], gondolas[2].ID)
	assert.Equal(t, "GND-MID", gondolas[1].SerialNumber)
}

func TestGondolaPhotoMutations(t *testing.T) {
	t.Parallel()

	s := NewStore()
	gondolaID := uuid.New()
	s.AddGondola(entity.Gondola{ID: gondolaID, SerialNumber: "GND-1"})

	photoID := uuid.New()
	s.AddGondolaPhoto(gondolaID.String(), entity.Photo{ID: photoID, Description: "front"})
	s.AddGondolaPhoto(gondolaID.String(), entity.Photo{ID: uuid.New(), Description: "back"})

	gondolas := s.Gondolas()
	require.Len(t, gondolas[0].Photos, 2)

	s.DeleteGondolaPhoto(gondolaID.String(), photoID.String())
	gondolas = s.Gondolas()
	require.Len(t, gondolas[0].Photos, 1)
	assert.Equal(t, "back", gondolas[0].Photos[0].Description)
}

func TestActiveGondolas(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddGondola(entity.Gondola{ID: uuid.New(), SerialNumber: "GND-1", Status: entity.GondolaStatusDeployed})
	s.AddGondola(entity.Gondola{ID: uuid.New(), SerialNumber: "GND-2", Status: entity.GondolaStatusOffHired})
	s.AddGondola(entity.Gondola{ID: uuid.New(), SerialNumber: "GND-3", Status: entity.GondolaStatusDeployed})

	active := s.ActiveGondolas()
	require.Len(t, active, 2)
	assert.Equal(t, "GND-1", active[0].SerialNumber)
	assert.Equal(t, "GND-3", active[1].SerialNumber)
}

func TestRecentProjects(t *testing.T) {
	t.Parallel()

	s := NewStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	older := entity.Project{ID: uuid.New(), ClientName: "Old"}
	older.CreatedAt = base.AddDate(0, -1, 0)
	newer := entity.Project{ID: uuid.New(), ClientName: "New"}
	newer.CreatedAt = base

	s.AddProject(older)
	s.AddProject(newer)

	recent := s.RecentProjects()
	require.Len(t, recent, 2)
	assert.Equal(t, "New", recent[0].ClientName)
	assert.Equal(t, "Old", recent[1].ClientName)
	assert.Equal(t, 2, s.TotalProjects())
}

func TestPendingInspectionsView(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 5)
	far := now.AddDate(0, 0, 20)

	s := NewStore()
	s.AddGondola(entity.Gondola{ID: uuid.New(), SerialNumber: "GND-SOON", NextInspection: &soon})
	s.AddGondola(entity.Gondola{ID: uuid.New(), SerialNumber: "GND-FAR", NextInspection: &far})

	pending := s.PendingInspections(now)
	require.Len(t, pending, 1)
	assert.Equal(t, "GND-SOON", pending[0].SerialNumber)
}

func TestUpdateProject_PreservesCollections(t *testing.T) {
	t.Parallel()

	s := NewStore()
	id := uuid.New()
	s.AddProject(entity.Project{
		ID:         id,
		ClientName: "Acme",
		Documents:  []entity.Document{{ID: uuid.New(), Name: "do.pdf"}},
		Gondolas:   []entity.Gondola{{ID: uuid.New(), SerialNumber: "GND-1"}},
	})

	name := "Acme Holdings"
	s.UpdateProject(id.String(), ProjectPatch{ClientName: &name})

	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Acme Holdings", projects[0].ClientName)
	assert.Len(t, projects[0].Documents, 1)
	assert.Len(t, projects[0].Gondolas, 1)
}

func TestDeleteStoresEntries(t *testing.T) {
	t.Parallel()

	s := NewStore()
	keep := uuid.New()
	drop := uuid.New()
	s.AddProject(entity.Project{ID: keep, ClientName: "Keep"})
	s.AddProject(entity.Project{ID: drop, ClientName: "Drop"})

	s.DeleteProject(drop.String())
	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, keep, projects[0].ID)

	gID := uuid.New()
	s.AddGondola(entity.Gondola{ID: gID, SerialNumber: "GND-1"})
	s.DeleteGondola(gID.String())
	assert.Empty(t, s.Gondolas())
}

func TestCertificateViews(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.SetCertificates([]entity.CertificateExpiry{
		{SerialNumber: "GND-1", Status: entity.DocStatusValid, DaysRemaining: 60},
		{SerialNumber: "GND-2", Status: entity.DocStatusExpired, DaysRemaining: -4},
		{SerialNumber: "GND-3", Status: entity.DocStatusExpiring, DaysRemaining: 12},
	})

	expiring := s.ExpiringCertificates()
	require.Len(t, expiring, 2)

	widget := s.CertificateWidget()
	require.Len(t, widget, 3)
	assert.Equal(t, "GND-2", widget[0].SerialNumber)
	assert.Equal(t, "GND-3", widget[1].SerialNumber)
	assert.Equal(t, "GND-1", widget[2].SerialNumber)
}

func TestOrphanDocuments(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	s := NewStore()
	s.SetDocuments([]entity.Document{
		{ID: uuid.New(), Name: "attached.pdf", ProjectID: &projectID},
		{ID: uuid.New(), Name: "floating.pdf"},
	})

	orphans := s.OrphanDocuments()
	require.Len(t, orphans, 1)
	assert.Equal(t, "floating.pdf", orphans[0].Name)

	assert.NotNil(t, NewStore().OrphanDocuments())
}
