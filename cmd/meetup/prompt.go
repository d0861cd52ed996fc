package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lutefd/meetup-engine/internal/dialog"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
)

// promptTeamCount asks which split to use when the roster size leaves it
// open. ok is false when the organiser cancels.
func promptTeamCount(ctx context.Context, in io.Reader, out io.Writer, options []teams.CountOption) (int, bool, error) {
	modal := dialog.New[[]teams.CountOption, int]()
	go answerTeamCount(ctx, modal, in, out)

	action, err := modal.Open(ctx, options)
	if err != nil {
		return 0, false, err
	}
	return action.Value, action.Confirmed, nil
}

func answerTeamCount(ctx context.Context, modal *dialog.Modal[[]teams.CountOption, int], in io.Reader, out io.Writer) {
	options, err := modal.Wait(ctx)
	if err != nil {
		return
	}
	for i, o := range options {
		sizes := make([]string, len(o.Sizes))
		for j, s := range o.Sizes {
			sizes[j] = strconv.Itoa(s)
		}
		fmt.Fprintf(out, "%d) %d teams (%s)\n", i+1, o.Teams, strings.Join(sizes, "/"))
	}
	fmt.Fprint(out, "choose a split, or press enter to cancel: ")

	line, _ := bufio.NewReader(in).ReadString('\n')
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(options) {
		_ = modal.Cancel()
		return
	}
	_ = modal.Confirm(options[choice-1].Teams)
}
