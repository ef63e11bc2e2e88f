package replicache

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := persistence.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

// memorySnapshots is an in-process Snapshots store.
type memorySnapshots struct {
	cvrs map[string]*CVR
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{cvrs: map[string]*CVR{}}
}

func (m *memorySnapshots) Get(ctx context.Context, cvrID string) (*CVR, error) {
	return m.cvrs[cvrID], nil
}

func (m *memorySnapshots) Put(ctx context.Context, cvrID string, cvr *CVR) error {
	m.cvrs[cvrID] = cvr
	return nil
}

func pullFixture(t *testing.T, versions map[string]int) (*Puller, *memorySnapshots, map[string]int) {
	t.Helper()
	db := testDB(t)
	snapshots := newMemorySnapshots()

	registry := NewRegistry()
	registry.MustRegister(staticEntry("chat",
		map[string]string{
			"a": `{"id":"a"}`,
			"b": `{"id":"b"}`,
		},
		versions))

	return NewPuller(db, snapshots, registry, zap.NewNop()), snapshots, versions
}

func TestPull_FirstPullSendsFullState(t *testing.T) {
	puller, snapshots, _ := pullFixture(t, map[string]int{"a": 1})

	resp, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1"})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Cookie.Order != 1 {
		t.Errorf("cookie order: got %d, want 1", resp.Cookie.Order)
	}
	if len(resp.Patch) != 2 || resp.Patch[0].Op != OpClear {
		t.Fatalf("patch: got %+v", resp.Patch)
	}
	if resp.Patch[1].Op != OpPut || resp.Patch[1].Key != "chat/a" {
		t.Errorf("put op: got %+v", resp.Patch[1])
	}

	stored := snapshots.cvrs[resp.Cookie.CvrID]
	if stored == nil {
		t.Fatal("snapshot not cached under new cvr id")
	}
	if stored.Entities["chat/a"] != 1 {
		t.Errorf("cached entities: got %v", stored.Entities)
	}
}

func TestPull_UnchangedViewKeepsCookie(t *testing.T) {
	puller, _, _ := pullFixture(t, map[string]int{"a": 1})

	first, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1"})
	if err != nil {
		t.Fatal(err)
	}

	second, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1", Cookie: &first.Cookie})
	if err != nil {
		t.Fatal(err)
	}

	if second.Cookie != first.Cookie {
		t.Errorf("cookie changed on unchanged view: %+v vs %+v", second.Cookie, first.Cookie)
	}
	if len(second.Patch) != 0 {
		t.Errorf("patch on unchanged view: got %+v", second.Patch)
	}
	if len(second.LastMutationIDChanges) != 0 {
		t.Errorf("lastMutationIDChanges: got %v", second.LastMutationIDChanges)
	}
}

func TestPull_ChangeBumpsOrderPastCookie(t *testing.T) {
	versions := map[string]int{"a": 1}
	puller, _, _ := pullFixture(t, versions)

	first, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1"})
	if err != nil {
		t.Fatal(err)
	}

	// Another device raced ahead: the client presents a cookie order far
	// beyond the group's stored watermark.
	versions["a"] = 2
	staleCookie := Cookie{Order: 7, CvrID: first.Cookie.CvrID}

	resp, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1", Cookie: &staleCookie})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Cookie.Order != 8 {
		t.Errorf("cookie order: got %d, want 8", resp.Cookie.Order)
	}
	if len(resp.Patch) != 1 || resp.Patch[0].Op != OpPut || resp.Patch[0].Key != "chat/a" {
		t.Errorf("patch: got %+v", resp.Patch)
	}
}

func TestPull_MissingSnapshotForcesFullDiff(t *testing.T) {
	puller, _, _ := pullFixture(t, map[string]int{"a": 1})

	first, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1"})
	if err != nil {
		t.Fatal(err)
	}

	// A cookie naming an evicted snapshot behaves like a fresh client.
	evicted := Cookie{Order: first.Cookie.Order, CvrID: "no-such-snapshot"}
	resp, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1", Cookie: &evicted})
	if err != nil {
		t.Fatal(err)
	}

	if len(resp.Patch) == 0 || resp.Patch[0].Op != OpClear {
		t.Fatalf("patch: got %+v, want clear-led full diff", resp.Patch)
	}
	if resp.Cookie.Order != first.Cookie.Order+1 {
		t.Errorf("cookie order: got %d, want %d", resp.Cookie.Order, first.Cookie.Order+1)
	}
}

func TestPull_RejectsForeignGroup(t *testing.T) {
	puller, _, _ := pullFixture(t, map[string]int{"a": 1})

	// First pull fixes the group's owner.
	if _, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1"}); err != nil {
		t.Fatal(err)
	}

	_, err := puller.Pull(context.Background(), "u2",
		PullRequest{ClientGroupID: "g1"})
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("pull against another user's group: got %v, want unauthorized", err)
	}
}

func TestPull_ReportsClientWatermarks(t *testing.T) {
	puller, _, _ := pullFixture(t, map[string]int{"a": 1})

	db := puller.db
	if err := db.Create(&models.ReplicacheClientGroup{ID: "g1", UserID: "u1"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.ReplicacheClient{ID: "c1", ClientGroupID: "g1", LastMutationID: 9}).Error; err != nil {
		t.Fatal(err)
	}

	resp, err := puller.Pull(context.Background(), "u1",
		PullRequest{ClientGroupID: "g1"})
	if err != nil {
		t.Fatal(err)
	}

	if resp.LastMutationIDChanges["c1"] != 9 {
		t.Errorf("lastMutationIDChanges: got %v", resp.LastMutationIDChanges)
	}
}
