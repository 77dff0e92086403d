package unit_tests

import (
	"context"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibegrapher/internal/llm/agents"
	"vibegrapher/internal/models"
	"vibegrapher/internal/services"
	"vibegrapher/internal/tests/mocks"
)

type diffFixture struct {
	*pipelineFixture
	service *services.DiffService
	diff    *models.Diff
}

func newDiffFixture(t *testing.T) *diffFixture {
	t.Helper()
	pf := newPipelineFixture(t, 3)

	projects := &mocks.ProjectRepositoryMock{
		GetByIDFunc: func(id string) (*models.Project, error) {
			if id == pf.project.ID {
				return pf.project, nil
			}
			return nil, nil
		},
	}
	sessions := &mocks.SessionRepositoryMock{
		GetByIDFunc: func(id string) (*models.Session, error) {
			if id == pf.session.ID {
				return pf.session, nil
			}
			return nil, nil
		},
	}

	diff := &models.Diff{
		ID:                uuid.NewString(),
		SessionID:         pf.session.ID,
		ProjectID:         pf.project.ID,
		BaseRevision:      pf.head,
		TargetBranch:      "main",
		PatchText:         pythonPatch,
		Description:       "add second parameter",
		ReviewerReasoning: "clean change",
		CommitMessage:     "Add b parameter to add",
		Status:            models.DiffApprovedByReviewer,
	}
	require.NoError(t, pf.diffs.Create(diff))

	svc := services.NewDiffService(
		pf.diffs, sessions, projects, pf.messages, pf.git,
		agents.NewReviewer(pf.reviewer), pf.service, pf.hub,
	)
	return &diffFixture{pipelineFixture: pf, service: svc, diff: diff}
}

func TestDiffCommit_AppliesAndClearsReviewerTurns(t *testing.T) {
	f := newDiffFixture(t)
	require.NoError(t, f.messages.Append(f.session.ID, &models.ConversationMessage{Role: models.RoleUser, Content: "make add take two numbers"}))
	require.NoError(t, f.messages.Append(f.session.ID, &models.ConversationMessage{Role: models.RoleGenerator, Content: "proposed"}))
	require.NoError(t, f.messages.Append(f.session.ID, &models.ConversationMessage{Role: models.RoleReviewer, Content: "clean change"}))

	committed, err := f.service.Commit(context.Background(), f.diff.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.DiffCommitted, committed.Status)
	assert.NotEmpty(t, committed.CommittedRevision)
	assert.NotEqual(t, f.head, committed.CommittedRevision)

	// The worktree now carries the patched source.
	code, err := f.git.CurrentCode(f.project)
	require.NoError(t, err)
	assert.Equal(t, pythonPatched, code)

	// Reviewer context is dropped; the generator keeps its memory.
	history, err := f.messages.ReadAll(f.session.ID)
	require.NoError(t, err)
	roles := make([]string, 0, len(history))
	for _, turn := range history {
		roles = append(roles, turn.Role)
	}
	assert.Equal(t, []string{models.RoleUser, models.RoleGenerator}, roles)
}

func TestDiffCommit_MessageOverride(t *testing.T) {
	f := newDiffFixture(t)
	committed, err := f.service.Commit(context.Background(), f.diff.ID, "Custom message")
	require.NoError(t, err)

	content, err := f.git.FileAtRevision(f.project, committed.CommittedRevision)
	require.NoError(t, err)
	assert.Equal(t, pythonPatched, content)
}

func TestDiffCommit_StaleBase(t *testing.T) {
	f := newDiffFixture(t)

	// Someone else moves the tree head after the diff was recorded.
	_, err := f.git.CommitContent(f.project, "def add(a):\n    return a  # touched\n", "unrelated change")
	require.NoError(t, err)

	_, err = f.service.Commit(context.Background(), f.diff.ID, "")
	require.ErrorIs(t, err, services.ErrStaleBase)

	// Nothing was mutated.
	diff, err := f.service.Get(f.diff.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DiffApprovedByReviewer, diff.Status)
}

func TestDiffCommit_TerminalDiffRejected(t *testing.T) {
	f := newDiffFixture(t)
	_, err := f.service.Commit(context.Background(), f.diff.ID, "")
	require.NoError(t, err)

	_, err = f.service.Commit(context.Background(), f.diff.ID, "")
	require.ErrorIs(t, err, services.ErrDiffTerminal)
}

func TestDiffReject_RequiresFeedback(t *testing.T) {
	f := newDiffFixture(t)
	_, _, err := f.service.ReviewHuman(context.Background(), f.diff.ID, services.DecisionReject, "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feedback")

	diff, err := f.service.Get(f.diff.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DiffApprovedByReviewer, diff.Status)
}

func TestDiffReject_MarksTerminalAndRerunsPipeline(t *testing.T) {
	f := newDiffFixture(t)
	require.NoError(t, f.messages.Append(f.session.ID, &models.ConversationMessage{Role: models.RoleUser, Content: "make add take two numbers"}))
	f.generator.Respond(textResponse(t, "understood, here is another take"))

	updated, result, err := f.service.ReviewHuman(context.Background(), f.diff.ID, services.DecisionReject, "use keyword arguments")
	require.NoError(t, err)

	assert.Equal(t, models.DiffRejectedByHuman, updated.Status)
	assert.Equal(t, "use keyword arguments", updated.HumanFeedback)
	require.NotNil(t, result)
	assert.Equal(t, "understood, here is another take", result.Content)
	assert.Equal(t, 1, f.generator.Calls)
}

func TestDiffReject_BusyPipelineLeavesDiffPending(t *testing.T) {
	f := newDiffFixture(t)

	started := make(chan struct{})
	proceed := make(chan struct{})
	f.generator.InvokeFunc = func(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
		close(started)
		<-proceed
		return schema.AssistantMessage(textResponse(t, "done"), nil), nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.pipelineFixture.service.HandleMessage(context.Background(), f.session.ID, "other work", "")
		assert.NoError(t, err)
	}()

	<-started
	_, _, err := f.service.ReviewHuman(context.Background(), f.diff.ID, services.DecisionReject, "redo it")
	require.ErrorIs(t, err, services.ErrPipelineBusy)

	// The diff is still pending; the feedback was not swallowed.
	diff, getErr := f.service.Get(f.diff.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.DiffApprovedByReviewer, diff.Status)
	assert.Empty(t, diff.HumanFeedback)

	close(proceed)
	wg.Wait()
}

func TestDiffReject_TerminalDiff(t *testing.T) {
	f := newDiffFixture(t)
	_, err := f.service.Commit(context.Background(), f.diff.ID, "")
	require.NoError(t, err)

	_, _, err = f.service.ReviewHuman(context.Background(), f.diff.ID, services.DecisionReject, "too late")
	require.ErrorIs(t, err, services.ErrDiffTerminal)
}

func TestDiffApprove_IsANoOp(t *testing.T) {
	f := newDiffFixture(t)
	diff, result, err := f.service.ReviewHuman(context.Background(), f.diff.ID, services.DecisionApprove, "")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, models.DiffApprovedByReviewer, diff.Status)
}

func TestDiffRefineCommitMessage(t *testing.T) {
	f := newDiffFixture(t)
	f.reviewer.Respond(reviewResponse(t, true, "summarized", "Accept two addends"))

	updated, err := f.service.RefineCommitMessage(context.Background(), f.diff.ID)
	require.NoError(t, err)
	assert.Equal(t, "Accept two addends", updated.CommitMessage)
	assert.Equal(t, models.DiffApprovedByReviewer, updated.Status)
}

func TestDiffRunTests_CachesResults(t *testing.T) {
	f := newDiffFixture(t)

	// Even after the head moves, tests run against the recorded base.
	_, err := f.git.CommitContent(f.project, "def other():\n    pass\n", "unrelated")
	require.NoError(t, err)

	updated, err := f.service.RunTests(context.Background(), f.diff.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.TestResults)
	require.NotNil(t, updated.TestsRunAt)
	assert.Contains(t, updated.TestResults, `"applies":true`)
}

func TestDiffListPending(t *testing.T) {
	f := newDiffFixture(t)
	pending, err := f.service.ListPending(f.session.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, f.diff.ID, pending[0].ID)

	_, err = f.service.Commit(context.Background(), f.diff.ID, "")
	require.NoError(t, err)

	pending, err = f.service.ListPending(f.session.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDiffGet_Unknown(t *testing.T) {
	f := newDiffFixture(t)
	_, err := f.service.Get("no-such-diff")
	require.ErrorIs(t, err, services.ErrNotFound)
}
