package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/2beens/liftlog/internal/apiclient"
	"github.com/2beens/liftlog/internal/coordinator"
	"github.com/2beens/liftlog/internal/progression"
	"github.com/2beens/liftlog/internal/workouts"

	log "github.com/sirupsen/logrus"
)

var errUsage = errors.New("bad usage")

type cli struct {
	client    *apiclient.Client
	tokenFile string
	out       io.Writer
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) < n {
		return nil, errUsage
	}
	values := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d [%s] is not a number", i+1, args[i])
		}
		values[i] = v
	}
	return values, nil
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.login(ctx, args)
	case "logout":
		if err := c.client.Logout(ctx); err != nil {
			return err
		}
		return os.Remove(c.tokenFile)
	case "selections":
		return c.selections(ctx)
	case "workouts":
		return c.listWorkouts(ctx)
	case "new":
		return c.newWorkout(ctx, args)
	case "show":
		ids, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		return c.withSession(ctx, ids[0], func(*coordinator.Session) error { return nil })
	case "delete":
		ids, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		return c.client.DeleteWorkout(ctx, ids[0])
	case "add-exercise":
		return c.addExercise(ctx, args)
	case "delete-exercise":
		ids, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			return s.DeleteExercise(ctx, coordinator.Confirmed(ids[1]))
		})
	case "note":
		ids, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		var note *string
		if len(args) > 2 {
			n := strings.Join(args[2:], " ")
			note = &n
		}
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			return s.UpdateExerciseNote(ctx, coordinator.Confirmed(ids[1]), note)
		})
	case "add-set":
		ids, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			_, err := s.AddSet(ctx, coordinator.Confirmed(ids[1]))
			return err
		})
	case "set":
		ids, err := intArgs(args, 4)
		if err != nil {
			return err
		}
		reps, weight := ids[2], ids[3]
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			return s.UpdateSet(ctx, coordinator.Confirmed(ids[1]), workouts.SetFields{Reps: &reps, Weight: &weight})
		})
	case "delete-set":
		ids, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			return s.DeleteSet(ctx, coordinator.Confirmed(ids[1]))
		})
	case "complete":
		ids, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			return s.CompleteWorkout(ctx, time.Now())
		})
	case "sentiment":
		ids, err := intArgs(args, 1)
		if err != nil || len(args) < 2 {
			return errUsage
		}
		return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
			return s.UpdateSentiment(ctx, workouts.Sentiment(args[1]))
		})
	case "tracked":
		return c.listTracked(ctx)
	case "track", "untrack":
		ids, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		if command == "untrack" {
			return c.client.RemoveTracked(ctx, ids[0])
		}
		_, err = c.client.AddTracked(ctx, ids[0])
		return err
	case "progression":
		return c.showProgression(ctx, args)
	default:
		return errUsage
	}
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	password := os.Getenv("LIFTCTL_PASSWORD")
	if password == "" {
		return errors.New("password not set, use LIFTCTL_PASSWORD")
	}
	resp, err := c.client.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.tokenFile, []byte(resp.Token), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(c.out, "logged in as user %d\n", resp.UserID)
	return nil
}

func (c *cli) selections(ctx context.Context) error {
	list, err := c.client.Selections(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRIMARY\tSECONDARY")
	for _, s := range list {
		secondary := "-"
		if s.SecondaryMuscleGroup != nil {
			secondary = *s.SecondaryMuscleGroup
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, s.PrimaryMuscleGroup, secondary)
	}
	return tw.Flush()
}

func (c *cli) listWorkouts(ctx context.Context) error {
	list, err := c.client.ListWorkouts(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCREATED\tCOMPLETED")
	for _, w := range list {
		completed := "-"
		if w.CompletedAt != nil {
			completed = w.CompletedAt.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", w.ID, w.Title, w.CreatedAt.Format(time.DateTime), completed)
	}
	return tw.Flush()
}

func (c *cli) newWorkout(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	nw := workouts.NewWorkout{Title: args[0]}
	if len(args) > 1 {
		templateID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("template id [%s] is not a number", args[1])
		}
		nw.TemplateID = &templateID
	}
	w, err := c.client.CreateWorkout(ctx, nw)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created workout %d\n", w.ID)
	return nil
}

func (c *cli) addExercise(ctx context.Context, args []string) error {
	ids, err := intArgs(args, 2)
	if err != nil {
		return err
	}
	return c.withSession(ctx, ids[0], func(s *coordinator.Session) error {
		at := len(s.Exercises())
		if len(args) > 2 {
			pos, convErr := strconv.Atoi(args[2])
			if convErr != nil {
				return fmt.Errorf("position [%s] is not a number", args[2])
			}
			at = pos
		}
		_, addErr := s.AddExercise(ctx, ids[1], at)
		return addErr
	})
}

// withSession opens a coordinator session on the workout, applies fn, waits
// for the projection to settle and prints it.
func (c *cli) withSession(ctx context.Context, workoutID int, fn func(s *coordinator.Session) error) error {
	userID, err := c.currentUser(ctx, workoutID)
	if err != nil {
		return err
	}

	notifier := coordinator.NotifierFunc(func(op coordinator.Op, err error) {
		log.Warnf("[%s] rolled back: %s", op, err)
	})
	session, err := coordinator.Open(ctx, c.client, userID, workoutID, notifier)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := fn(session); err != nil {
		return err
	}
	session.Settle()
	c.printSession(session)
	return nil
}

// currentUser resolves the caller's id from the workout, the server already
// refused it if the token belongs to someone else.
func (c *cli) currentUser(ctx context.Context, workoutID int) (int, error) {
	w, err := c.client.GetWorkout(ctx, workoutID)
	if err != nil {
		return 0, err
	}
	return w.UserID, nil
}

func (c *cli) printSession(s *coordinator.Session) {
	w := s.Workout()
	status := "in progress"
	if w.Completed {
		status = "completed"
	}
	fmt.Fprintf(c.out, "workout %d: %s (%s)\n", w.ID, w.Title, status)
	if w.Sentiment != nil {
		fmt.Fprintf(c.out, "sentiment: %s\n", *w.Sentiment)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, e := range s.Exercises() {
		note := ""
		if e.Note != nil {
			note = "  // " + *e.Note
		}
		fmt.Fprintf(tw, "%d.\t%s [%s]%s\n", e.Order+1, e.SelectionName, e.Ref, note)
		for _, set := range s.Sets(e.Ref) {
			fmt.Fprintf(tw, "\t  set %d [%s]\t%s x %s\n", set.Order+1, set.Ref, fmtInt(set.Weight, "lb"), fmtInt(set.Reps, ""))
		}
	}
	_ = tw.Flush()
}

func fmtInt(v *int, unit string) string {
	if v == nil {
		return "_"
	}
	return strconv.Itoa(*v) + unit
}

func (c *cli) listTracked(ctx context.Context) error {
	list, err := c.client.ListTracked(ctx)
	if err != nil {
		return err
	}
	selections, err := c.client.Selections(ctx)
	if err != nil {
		return err
	}
	names := make(map[int]string, len(selections))
	for _, s := range selections {
		names[s.ID] = s.Name
	}
	for _, t := range list {
		fmt.Fprintf(c.out, "%d\t%s\n", t.ExerciseSelectionID, names[t.ExerciseSelectionID])
	}
	return nil
}

func (c *cli) showProgression(ctx context.Context, args []string) error {
	rangeToken := progression.DefaultRange
	if len(args) > 0 {
		rangeToken = progression.RangeToken(args[0])
	}
	selectionID := 0
	if len(args) > 1 {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("selection id [%s] is not a number", args[1])
		}
		selectionID = id
	}

	resp, err := c.client.Progression(ctx, rangeToken, selectionID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	switch points := resp.Data.(type) {
	case []progression.WeeklyE1RMPoint:
		fmt.Fprintln(tw, "WEEK\tE1RM")
		for _, p := range points {
			fmt.Fprintf(tw, "%s\t%.1f\n", p.WeekStart.Format(time.DateOnly), p.E1RM)
		}
	case []progression.WeeklyMuscleGroupPoint:
		groups := append([]string(nil), resp.Groups...)
		sort.Strings(groups)
		fmt.Fprintf(tw, "WEEK\t%s\n", strings.ToUpper(strings.Join(groups, "\t")))
		for _, p := range points {
			row := []string{p.WeekStart.Format(time.DateOnly)}
			for _, g := range groups {
				row = append(row, strconv.FormatFloat(p.Volume[g], 'f', 1, 64))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}
	return tw.Flush()
}
