package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/locale"
)

// manifest is the photo list read by the group command.
type manifest struct {
	Photos []age.Photo `json:"photos"`
}

// runGroup classifies a photo manifest for one birth date and prints the
// stacks in display order, each followed by its photos.
func runGroup(args []string, stdin io.Reader, stdout io.Writer, now time.Time) error {
	fs := flag.NewFlagSet(config.CmdGroup, flag.ContinueOnError)
	birth := fs.String(config.FlagBirth, "", config.FlagDescBirth)
	tracking := fs.String(config.FlagTracking, "", config.FlagDescTracking)
	months := fs.String(config.FlagMonths, "", config.FlagDescMonths)
	photos := fs.String(config.FlagPhotos, config.StdinPath, config.FlagDescPhotos)
	lang := fs.String(config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	showEmpty := fs.Bool(config.FlagShowEmpty, false, config.FlagDescShow)
	strict := fs.Bool(config.FlagStrict, false, config.FlagDescStrict)
	order := fs.String(config.FlagSort, age.SortOldestFirst.String(), config.FlagDescSort)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *birth == "" {
		return errors.New(config.ErrBirthRequired)
	}
	birthDate, err := time.Parse(config.DateFormatFullDash, *birth)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}

	p := age.NewPerson("", birthDate, now)
	if *tracking != "" {
		p.PregnancyTracking = age.ParsePregnancyTracking(*tracking)
	}
	if *months != "" {
		p.BirthMonthsDisplay = age.ParseBirthMonthsDisplay(*months)
	}
	p.ShowEmptyStacks = *showEmpty
	p.SortOrder = age.ParseSortOrder(*order)

	m, err := readManifest(*photos, stdin)
	if err != nil {
		return err
	}

	var groups []age.Group
	if *strict {
		groups = age.GroupAndSort(p, m.Photos)
	} else {
		groups = age.Calculator{}.Stacks(p, m.Photos)
	}

	tr := locale.New(*lang)
	placed := 0
	for _, g := range groups {
		fmt.Fprintf(stdout, config.FormatStackLine, tr.Label(g.Bucket), len(g.Photos))
		for _, ph := range g.Photos {
			ref := string(ph.Media)
			if ref == "" {
				ref = ph.ID.String()
			}
			fmt.Fprintf(stdout, config.FormatPhotoLine, ph.Taken.Format(config.DateFormatFullDash), ref)
		}
		placed += len(g.Photos)
	}

	slog.Debug(config.MsgGrouped,
		config.LogKeyComponent, config.CompGroup,
		config.LogKeyCount, len(m.Photos),
		config.LogKeyGroups, len(groups),
		config.LogKeyExcluded, len(m.Photos)-placed,
	)
	return nil
}

func readManifest(path string, stdin io.Reader) (manifest, error) {
	r := stdin
	if path != config.StdinPath {
		f, err := os.Open(path)
		if err != nil {
			return manifest{}, fmt.Errorf("%s: %w", config.ErrManifestRead, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var m manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return manifest{}, fmt.Errorf("%s: %w", config.ErrManifestDecode, err)
	}
	return m, nil
}
