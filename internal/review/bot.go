package review

import (
	"os"
	"runtime"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/item"
)

// Organization is a review-authoring organization.
type Organization struct {
	Name string
	URL  string
}

// Item renders the organization as an item.
func (o Organization) Item() item.M {
	return item.M{
		"@type": "Organization",
		"name":  o.Name,
		"url":   o.URL,
	}
}

// StandardOrganization is the authoring organization attached to every
// builtin reviewer bot.
func StandardOrganization() Organization {
	return Organization{
		Name: "Veridex Research",
		URL:  consts.ProjectURL,
	}
}

// ExecutionEnv describes the runtime executing the reviewer bots.
func ExecutionEnv() item.M {
	host, _ := os.Hostname()
	return item.M{
		"go.version": runtime.Version(),
		"hostname":   host,
	}
}

// Bot describes a reviewer bot about to become an item. The zero values of
// Author, Requirements and LaunchConfig fall back to the standard
// organization, a go requirement and an empty launch configuration.
type Bot struct {
	Type         string
	Name         string
	Description  string
	DateCreated  string
	Version      string
	Requirements []string
	Author       Organization
	IsBasedOn    []item.M
	LaunchConfig item.M
	TaskConfig   item.M
}

// Item renders the bot as an item with its identity hash attached. The
// identifier covers the bot's type, name, creation date, version, sub-bots
// and launch configuration; the execution environment stays outside it.
func (b Bot) Item() (item.M, error) {
	author := b.Author
	if author == (Organization{}) {
		author = StandardOrganization()
	}
	launch := b.LaunchConfig
	if launch == nil {
		launch = item.M{}
	}
	reqs := []any{"go"}
	if len(b.Requirements) > 0 {
		reqs = make([]any, 0, len(b.Requirements))
		for _, r := range b.Requirements {
			reqs = append(reqs, r)
		}
	}
	basedOn := make([]any, 0, len(b.IsBasedOn))
	for _, sub := range b.IsBasedOn {
		basedOn = append(basedOn, sub)
	}
	m := item.M{
		"@context":             consts.CoinformContext,
		"@type":                b.Type,
		"additionalType":       AdditionalTypes(b.Type),
		"name":                 b.Name,
		"description":          b.Description,
		"author":               author.Item(),
		"dateCreated":          b.DateCreated,
		"applicationCategory":  []any{"Disinformation Detection"},
		"softwareRequirements": reqs,
		"softwareVersion":      b.Version,
		"executionEnvironment": ExecutionEnv(),
		"isBasedOn":            basedOn,
		"launchConfiguration":  launch,
	}
	if b.TaskConfig != nil {
		m["taskConfiguration"] = b.TaskConfig
	}
	return item.WithIdentifier(m)
}

// MustItem renders the bot and panics on identity errors. Bot descriptions
// are assembled from constants at reviewer construction time, where a
// failure is a programming error.
func (b Bot) MustItem() item.M {
	m, err := b.Item()
	if err != nil {
		panic(err)
	}
	return m
}
