package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blogup/blogup/internal/client"

	"github.com/urfave/cli/v2"
)

// ============================================================================
// CLIENT COMMANDS
// ============================================================================

var credentialFlags = []cli.Flag{
	&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
	&cli.StringFlag{Name: "password", Usage: "Account password", Required: true, EnvVars: []string{"BLOGUP_PASSWORD"}},
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account and print its token",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Display name"},
		}, credentialFlags...),
		Action: func(c *cli.Context) error {
			api := client.New(c.String("url"))
			token, err := api.Signup(c.String("email"), c.String("password"), c.String("name"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func signinCommand() *cli.Command {
	return &cli.Command{
		Name:    "signin",
		Aliases: []string{"login"},
		Usage:   "Sign in and print a token",
		Flags:   credentialFlags,
		Action: func(c *cli.Context) error {
			api := client.New(c.String("url"))
			token, user, err := api.Signin(c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Signed in as %s (%s)\n", user.Email, user.ID)
			fmt.Println(token)
			return nil
		},
	}
}

func postCommand() *cli.Command {
	titleFlag := &cli.StringFlag{Name: "title", Usage: "Post title", Required: true}
	contentFlag := &cli.StringFlag{Name: "content", Usage: "Post content", Required: true}
	return &cli.Command{
		Name:  "post",
		Usage: "Create, update and read posts",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a post",
				Flags: []cli.Flag{titleFlag, contentFlag},
				Action: func(c *cli.Context) error {
					api, err := authedClient(c)
					if err != nil {
						return err
					}
					id, err := api.CreatePost(c.String("title"), c.String("content"))
					if err != nil {
						return err
					}
					fmt.Println(id)
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Update a post you own",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Post ID", Required: true},
					titleFlag,
					contentFlag,
				},
				Action: func(c *cli.Context) error {
					api, err := authedClient(c)
					if err != nil {
						return err
					}
					if err := api.UpdatePost(c.String("id"), c.String("title"), c.String("content")); err != nil {
						return err
					}
					fmt.Println("✓ Updated post")
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Show a post",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: blogup post get <id>", 2)
					}
					api, err := authedClient(c)
					if err != nil {
						return err
					}
					post, err := api.GetPost(c.Args().First())
					if err != nil {
						return err
					}
					if post == nil {
						return cli.Exit("post not found", 1)
					}
					return printJSON(post)
				},
			},
			{
				Name:  "list",
				Usage: "List every post",
				Action: func(c *cli.Context) error {
					api, err := authedClient(c)
					if err != nil {
						return err
					}
					posts, err := api.ListPosts()
					if err != nil {
						return err
					}
					return printJSON(posts)
				},
			},
		},
	}
}

func authedClient(c *cli.Context) (*client.Client, error) {
	api := client.New(c.String("url"))
	api.Token = c.String("token")
	if !api.IsAuthenticated() {
		return nil, errors.New("--token or BLOGUP_TOKEN is required; run 'blogup signin' first")
	}
	return api, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
