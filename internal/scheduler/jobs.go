package scheduler

import (
	"github.com/rs/zerolog"
)

// Reloader is satisfied by classifier artifact providers; Reload
// reports whether a new artifact version was picked up.
type Reloader interface {
	Reload() (bool, error)
}

// ArtifactReloadJob hot-reloads a classifier bundle when its file on
// disk changes. The provider swaps the full bundle atomically, so a
// reload never mixes an old classifier with new thresholds.
type ArtifactReloadJob struct {
	provider Reloader
	name     string
	log      zerolog.Logger
}

func NewArtifactReloadJob(name string, provider Reloader, log zerolog.Logger) *ArtifactReloadJob {
	return &ArtifactReloadJob{
		provider: provider,
		name:     name,
		log:      log.With().Str("job", name).Logger(),
	}
}

func (j *ArtifactReloadJob) Name() string { return j.name }

func (j *ArtifactReloadJob) Run() error {
	reloaded, err := j.provider.Reload()
	if err != nil {
		return err
	}
	if reloaded {
		j.log.Info().Msg("Classifier artifact reloaded")
	}
	return nil
}

// Checkpointer is satisfied by the database wrapper
type Checkpointer interface {
	Checkpoint() (logPages, checkpointed int, err error)
	Name() string
}

// CheckpointJob periodically flushes a database's WAL into the main file
type CheckpointJob struct {
	db  Checkpointer
	log zerolog.Logger
}

func NewCheckpointJob(db Checkpointer, log zerolog.Logger) *CheckpointJob {
	return &CheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

func (j *CheckpointJob) Name() string { return "wal_checkpoint_" + j.db.Name() }

func (j *CheckpointJob) Run() error {
	logPages, checkpointed, err := j.db.Checkpoint()
	if err != nil {
		return err
	}
	j.log.Debug().
		Str("database", j.db.Name()).
		Int("log_pages", logPages).
		Int("checkpointed", checkpointed).
		Msg("WAL checkpoint completed")
	return nil
}
