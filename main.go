// Command blog serves a blog with a publish/unpublish workflow.
//
// Usage:
//
//	blog [flags]          serve the blog and its backend
//	blog init [flags]     manage users and groups
//	blog demo [flags]     create dummy content
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/blog/config"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/logger"
	"github.com/wansing/blog/sqldb"
	"github.com/wansing/blog/sqldb/mysql"
	"github.com/wansing/blog/sqldb/sqlite3"
	"go.uber.org/zap"
)

// For MySQL, the collation should be utf8mb4_unicode_ci.
const defaultDB = "sqlite3:blog.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"

// common holds the flags which all subcommands share.
type common struct {
	db     string
	config string
	debug  bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.db, "db", defaultDB, "sql database `url`, see github.com/xo/dburl")
	fs.StringVar(&c.config, "config", "", "read the blog settings from this ini `file`")
	fs.BoolVar(&c.debug, "debug", false, "log debug messages")
}

func main() {

	var opts common

	var serveFlags = flag.NewFlagSet("blog", flag.ExitOnError)
	opts.register(serveFlags)
	var listenAddr = serveFlags.String("listen", "127.0.0.1:8080", "serve HTTP at this `address`")
	// a reverse proxy must pass the prefix on, e.g. the nginx proxy_pass url should not end with a slash
	var base = serveFlags.String("base", "", "serve below this path `prefix`")

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)
	opts.register(initFlags)
	var accounts accountOpts
	accounts.register(initFlags)

	var demoFlags = flag.NewFlagSet("demo", flag.ExitOnError)
	opts.register(demoFlags)
	var demo core.ContentOptions
	demoFlags.IntVar(&demo.Posts, "posts", 50, "create this `number` of posts")
	demoFlags.IntVar(&demo.Tags, "tags", 10, "create this `number` of tags")
	demoFlags.IntVar(&demo.TagsMin, "tags-min", 0, "assign at least this `number` of tags to each post")
	demoFlags.IntVar(&demo.TagsMax, "tags-max", 3, "assign at most this `number` of tags to each post")
	demoFlags.StringVar(&demo.UserName, "user", "", "author `name` of the posts")

	var cmd = "serve"
	var args = os.Args[1:]
	if len(args) > 0 && (args[0] == "init" || args[0] == "demo") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "init":
		initFlags.Parse(args)
	case "demo":
		demoFlags.Parse(args)
	default:
		serveFlags.Parse(args)
	}

	var log = logger.New(opts.debug)
	defer log.Sync()

	db, closeDB, err := open(opts, log)
	if err != nil {
		log.Error("error opening blog", zap.Error(err)) // log.Fatal would skip the deferred calls
		return
	}
	defer closeDB()

	switch cmd {
	case "init":
		if err := accounts.run(db); err != nil {
			log.Error("init failed", zap.Error(err))
		}
	case "demo":
		if _, err := db.CreateContent(demo); err != nil {
			log.Error("error creating dummy content", zap.Error(err))
		}
	default:
		if err := serve(db, *listenAddr, normalizeBase(*base)); err != nil {
			log.Error("error serving", zap.Error(err))
		}
	}
}

// normalizeBase returns the prefix with a leading slash and without a trailing slash, or an empty string.
func normalizeBase(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

// open loads the config, opens the database and returns an initialized CoreDB.
func open(opts common, log *zap.Logger) (*core.CoreDB, func(), error) {

	var cfg = config.Default()
	if opts.config != "" {
		var err error
		if cfg, err = config.Load(opts.config); err != nil {
			return nil, nil, fmt.Errorf("loading config %s: %w", opts.config, err)
		}
	}

	sqlDB, dialect, err := sqldb.Open(opts.db)
	if err != nil {
		return nil, nil, err
	}
	log.Info("database opened", zap.String("dialect", string(dialect)))

	var closeDB = func() {
		log.Info("closing database")
		sqlDB.Close()
	}

	store, err := sessionStore(sqlDB, dialect)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	var db = &core.CoreDB{
		Config: cfg,
		Log:    log,
	}

	if err := sqldb.Attach(db, sqlDB, dialect); err != nil {
		closeDB()
		return nil, nil, err
	}

	if err := db.Init(store, ""); err != nil {
		closeDB()
		return nil, nil, err
	}

	return db, closeDB, nil
}

func sessionStore(sqlDB *sql.DB, dialect sqldb.Dialect) (scs.Store, error) {
	switch dialect {
	case sqldb.MySQL:
		return mysql.NewSessionStore(sqlDB)
	case sqldb.SQLite3:
		return sqlite3.NewSessionStore(sqlDB)
	default:
		return nil, fmt.Errorf("no session store for %s", dialect)
	}
}
