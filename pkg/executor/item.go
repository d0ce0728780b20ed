package executor

import (
	"io/fs"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/template"
	"github.com/arthur-debert/dtsync/pkg/types"
)

const (
	reasonUpToDate = "up to date"
	reasonDryRun   = "dry run"
)

// executeItem runs one plan item. The returned error is non-nil only for
// fatal failures; item-level failures are recorded in the result.
func (e *Executor) executeItem(item types.PlanItem) (types.ItemResult, error) {
	res := types.ItemResult{Item: item, State: types.StatePending}

	content, mode, err := e.content(item)
	if err == nil {
		switch item.Method {
		case types.MethodCopy:
			err = e.copyItem(&res, content, mode)
		case types.MethodSymlink:
			err = e.linkItem(&res, content, mode)
		default:
			err = errors.Newf(errors.ErrInternal, "unknown sync method %q", item.Method)
		}
	}
	return e.settle(res, err)
}

// content reads the source and renders it when the item asks for it and
// the bytes look like text
func (e *Executor) content(item types.PlanItem) ([]byte, fs.FileMode, error) {
	info, err := e.fs.Stat(item.Source)
	if err != nil {
		return nil, 0, errors.Wrapf(err, errors.ErrFileRead, "cannot stat source %s", item.Source)
	}
	data, err := e.fs.ReadFile(item.Source)
	if err != nil {
		return nil, 0, errors.Wrapf(err, errors.ErrFileRead, "cannot read source %s", item.Source)
	}
	mode := info.Mode().Perm()

	if !item.Renderable || e.renderer == nil {
		return data, mode, nil
	}
	if !template.IsText(data) {
		e.logger.Debug().Str("source", item.Source).Msg("Binary content, not rendering")
		return data, mode, nil
	}
	rendered, err := e.renderer.Render(item.Source, data, item.Context)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrRender) {
			return nil, 0, err
		}
		return nil, 0, errors.Wrapf(err, errors.ErrRender, "cannot render %s", item.Source)
	}
	return rendered, mode, nil
}

// copyItem writes content directly at the destination
func (e *Executor) copyItem(res *types.ItemResult, content []byte, mode fs.FileMode) error {
	dest := res.Item.Destination

	st, err := e.inspect(dest)
	if err != nil {
		return err
	}

	switch st.kind {
	case kindDir:
		return errors.Newf(errors.ErrDestinationDir, "a directory exists at the destination")
	case kindFile:
		same, err := e.sameContent(dest, content)
		if err != nil {
			return err
		}
		if same {
			res.State, res.Action, res.Reason = types.StateSkipped, types.ActionUpToDate, reasonUpToDate
			return nil
		}
	}

	action, err := e.decide(res, st)
	if err != nil {
		return err
	}
	res.Action = action
	if e.dryRun {
		res.Reason = reasonDryRun
		return nil
	}

	n, err := e.writeFile(dest, content, mode)
	res.Mutations += n
	if err != nil {
		return err
	}
	res.State = types.StateDone
	return nil
}

// linkItem stages content under the staging root and points the
// destination at the staged file
func (e *Executor) linkItem(res *types.ItemResult, content []byte, mode fs.FileMode) error {
	dest, staged := res.Item.Destination, res.Item.StagingPath
	if staged == "" {
		return errors.Newf(errors.ErrInternal, "symlink item without staging path")
	}

	st, err := e.inspect(dest)
	if err != nil {
		return err
	}
	if st.kind == kindDir {
		return errors.Newf(errors.ErrDestinationDir, "a directory exists at the destination")
	}
	// a dead link to the staged path comes back to life once the staged
	// file is rewritten
	linked := (st.kind == kindLink || st.kind == kindDeadLink) && st.link == staged

	fresh, err := e.stagedFresh(staged, content)
	if err != nil {
		return err
	}

	if linked && fresh {
		res.State, res.Action, res.Reason = types.StateSkipped, types.ActionUpToDate, reasonUpToDate
		return nil
	}

	action := types.ActionRestage
	if !linked {
		if action, err = e.decide(res, st); err != nil {
			return err
		}
		if action == types.ActionCopy {
			action = types.ActionLink
		}
	}
	res.Action = action
	if e.dryRun {
		res.Reason = reasonDryRun
		return nil
	}

	if !fresh {
		n, err := e.writeFile(staged, content, mode)
		res.Mutations += n
		if err != nil {
			return err
		}
		res.State = types.StateStaged
		e.logger.Trace().Str("staged", staged).Msg("Content staged")
	}

	if !linked {
		n, err := e.placeLink(dest, staged)
		res.Mutations += n
		if err != nil {
			return err
		}
	}
	res.State = types.StateDone
	return nil
}

// decide applies the overwrite policy to whatever sits at the destination
func (e *Executor) decide(res *types.ItemResult, st destState) (types.ItemAction, error) {
	switch st.kind {
	case kindAbsent:
		return types.ActionCopy, nil
	case kindDeadLink:
		e.logger.Debug().Str("destination", res.Item.Destination).Str("link", st.link).Msg("Replacing dead symlink")
		return types.ActionReplace, nil
	}
	if !res.Item.AllowOverwrite {
		res.Action = types.ActionConflict
		return types.ActionConflict, errors.Newf(errors.ErrOverwriteDenied,
			"destination exists and allow_overwrite is false")
	}
	return types.ActionReplace, nil
}

// stagedFresh reports whether the staged copy already holds content
func (e *Executor) stagedFresh(staged string, content []byte) (bool, error) {
	st, err := e.inspect(staged)
	if err != nil {
		return false, err
	}
	switch st.kind {
	case kindFile:
		return e.sameContent(staged, content)
	case kindDir:
		return false, errors.Newf(errors.ErrDestinationDir, "a directory exists at the staging path %s", staged)
	}
	return false, nil
}

// settle turns the outcome of an item into its final result
func (e *Executor) settle(res types.ItemResult, err error) (types.ItemResult, error) {
	log := e.logger.With().
		Str("group", res.Item.Group).
		Str("destination", res.Item.Destination).
		Logger()

	if err == nil {
		switch res.State {
		case types.StateSkipped:
			log.Debug().Str("reason", res.Reason).Msg("Item skipped")
		case types.StateDone:
			log.Info().Str("action", string(res.Action)).Int("mutations", res.Mutations).Msg("Item synced")
		default:
			log.Info().Str("action", string(res.Action)).Msg("Item planned")
		}
		return res, nil
	}

	res.State = types.StateFailed
	if res.Action == "" || res.Action == types.ActionCopy || res.Action == types.ActionLink ||
		res.Action == types.ActionRestage || res.Action == types.ActionReplace {
		res.Action = types.ActionError
	}
	res.Reason = err.Error()

	if isItemLevel(err) {
		res.Err = errors.NewItemError(res.Item.Destination, asDtError(err))
		log.Warn().Err(err).Msg("Item failed")
		return res, nil
	}

	res.Err = err
	log.Error().Err(err).Msg("Unexpected failure, aborting")
	return res, errors.Wrapf(err, errors.ErrInternal, "unexpected failure syncing %s", res.Item.Destination)
}
