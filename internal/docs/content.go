package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with blogflow",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "Config file schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "env",
		Title:   "Environment Variables",
		Summary: "BLOGFLOW_* overrides and the .env file",
		Content: topicEnv,
	},
	{
		Name:    "stages",
		Title:   "Workflow Stages",
		Summary: "Clustering, titles, outline, and final article",
		Content: topicStages,
	},
	{
		Name:    "errors",
		Title:   "Errors and Retries",
		Summary: "Error kinds, automatic retries, and the circuit breaker",
		Content: topicErrors,
	},
	{
		Name:    "artifacts",
		Title:   "Artifacts Directory",
		Summary: "Structure of .blogflow/artifacts/ and what gets saved",
		Content: topicArtifacts,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a project:

    cd your-project
    blogflow init

   This creates .blogflow/config.yaml and .env.example.

2. Point the endpoints in .blogflow/config.yaml at your generation
   services and copy .env.example to .env.

3. Run a workflow interactively:

    blogflow run "trail running shoes"

   You choose keywords, set their priorities, pick a title, and review
   the outline and article before they are saved.

4. Or let blogflow decide everything:

    blogflow run "trail running shoes" --auto

5. Check the last run and saved articles:

    blogflow status
    blogflow articles

CLI
---

  blogflow run <keyword>                 Run the workflow
  blogflow run <keyword> --auto          Choose keywords and titles automatically
  blogflow run <keyword> --retry N       Automatic retries per stage
  blogflow run <keyword> --metrics-addr  Serve Prometheus metrics while running
  blogflow status                        Show the most recent run
  blogflow articles [--limit N]          List saved articles
  blogflow init                          Scaffold .blogflow/ directory
  blogflow docs                          List documentation topics
  blogflow docs <topic>                  Show a documentation topic
`

const topicConfig = `Configuration Reference
=======================

Settings live in .blogflow/config.yaml. blogflow searches upward from the
current directory for it.

Top-level fields
----------------

  name             string    Required. Project name.
  endpoints        object    Required. One URL per stage:
                             discovery, clustering, titles, outline,
                             final_article.
  timeouts         map       Seconds per stage. Default: 60 (discovery),
                             300 (everything else).
  headers          map       Extra HTTP headers sent to every endpoint.
  discovery        object    language (en), country (us), depth (1, max 5),
                             limit (100, max 1000).
  retry            object    max: automatic retries per stage (0-10).
  breaker          object    max-failures: consecutive failures before a
                             stage endpoint is short-circuited (default 5).
                             cooldown: seconds before trying again (30).
  store            object    driver: sqlite3 (default) or postgres.
                             dsn: connection string. Required for postgres.
                             Default: .blogflow/articles.db
  user             object    id and session-token of the current user.
  log              object    level: debug, info, warn, error (info).
                             format: console or json (console).
  metrics          object    addr: host:port to serve /metrics on.
  artifacts-dir    string    Default: .blogflow/artifacts

Relative paths are resolved against the project root.

Example Config
--------------

  name: my-blog
  endpoints:
    discovery: https://api.example.com/keywords/discover
    clustering: https://api.example.com/keywords/cluster
    titles: https://api.example.com/content/titles
    outline: https://api.example.com/content/outline
    final_article: https://api.example.com/content/article
  retry:
    max: 2
  store:
    driver: postgres
    dsn: postgres://blogflow@localhost/blogflow?sslmode=disable
`

const topicEnv = `Environment Variables
=====================

blogflow loads .env from the project root before reading the config.
Variables already set in the environment take precedence over .env.

  BLOGFLOW_USER_ID             Overrides user.id
  BLOGFLOW_SESSION_TOKEN       Overrides user.session-token
  BLOGFLOW_API_KEY             Sent as "Authorization: Bearer <key>"
  BLOGFLOW_STORE_DRIVER        Overrides store.driver
  BLOGFLOW_STORE_DSN           Overrides store.dsn
  BLOGFLOW_LOG_LEVEL           Overrides log.level
  BLOGFLOW_<STAGE>_URL         Overrides one endpoint, e.g.
                               BLOGFLOW_FINAL_ARTICLE_URL

Without a user id the run is anonymous. The session id sent to the
endpoints is the first 32 characters of the session token.
`

const topicStages = `Workflow Stages
===============

A run starts from one keyword and moves through these stages:

  discovery        The keyword is expanded into related keywords.
  clustering       Keywords are grouped into clusters. Mark keywords as
                   selected, rejected, or left alone, and give each
                   selected keyword a priority from 1 to 10.
                   Every priority must be used exactly once, so exactly
                   ten keywords must be selected to continue.
  titles           Candidate titles are generated. Mark one as selected.
  outline          An outline is generated for the selected title. Edit
                   the title, alternate title, or outline text.
  final article    The article is generated from the outline. Review the
                   title, alternate title, and body. All three are
                   required.
  persist          The article is saved to the store together with the
                   user, session, and blog id.

Each stage replaces the data of the stages after it. Going back to an
earlier stage cancels any request still in flight.

Clustering can be filtered by keyword text, category, intent, and
difficulty range, grouped by cluster, category, or intent, and sorted by
any metric column.
`

const topicErrors = `Errors and Retries
==================

Every failure has a kind:

  validation       Bad input. Fix it and try again. Never retried.
  timeout          The stage exceeded its timeout. Retried.
  server_error     The endpoint failed or returned an error status.
                   Retried.
  malformed_response
                   The response could not be understood. Retried.
  cancelled        The request was superseded or interrupted. A newer
                   response always wins; stale responses are dropped.

With --retry N (or retry.max), recoverable failures are retried up to N
times with the same request. A failed save is not retried.

Each endpoint has a circuit breaker. After breaker.max-failures
consecutive failures, requests fail immediately with a 503 server error
until the cooldown has passed.
`

const topicArtifacts = `Artifacts Directory
===================

Each run writes to .blogflow/artifacts/<workflow-id>/:

  status.json          Current stage, status, error kind, retries, and
                       the saved article id.
  timing.json          Start, end, attempts, and outcome of every step.
  discovery.json       Discovered keywords.
  clustering.json      Clusters as returned by the endpoint.
  titles.json          Generated titles.
  outline.json         Outline record.
  final_article.json   Final article record.

.blogflow/artifacts/latest holds the id of the most recent run, which
'blogflow status' reads. Artifacts are for inspection only; a run cannot
be resumed from them.
`
