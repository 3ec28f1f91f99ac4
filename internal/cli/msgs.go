package cli

// Shared messages
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgVersionShort = "Print version information"
	MsgManShort     = "Generate man pages"
)

// move-downloads
const (
	MsgDownloadsShort = "Sort downloaded files into place using rules"
	MsgDownloadsLong  = `move-downloads matches the names of downloaded files against an ordered list
of rules and moves each file to the destination its rule computes.

Rules come from the inline "rules" list of the config file and from the
*.yml, *.yaml and *.toml files in the rules directory. Every processed file
is linked into the recent files directory when one is configured.`

	MsgFlagConfig    = "Config file (default $XDG_CONFIG_HOME/move-downloads/config.yml)"
	MsgProcessShort  = "Route the given files once"
	MsgFlagDryRun    = "Show where files would go without touching them"
	MsgWatchShort    = "Watch a directory and route files as they appear"
	MsgFlagInitial   = "Also route files already in the directory"
	MsgRulesShort    = "List the loaded rules"
	MsgCheckShort    = "Show which rule and target apply to file names"
	MsgNoRule        = "no rule"
	MsgSkippedHeader = "Skipped rule providers:"
)

// git-mirror
const (
	MsgGitMirrorShort = "Store and restore a tree of git repositories"
	MsgGitMirrorLong  = `git-mirror records every git repository below a directory, with its origin
URL, in a manifest file and recreates the tree from that manifest on
another machine.

Repositories below a "checkout" or "vendor" directory are never recorded.
Exclude patterns ending in "/" exclude everything below that path; other
patterns exclude one repository.`
	MsgStoreShort   = "Write the manifest for the repositories below a directory"
	MsgRestoreShort = "Clone, update or purge repositories to match a manifest"
	MsgFlagExclude  = "Repository path to skip (repeatable, trailing / for a subtree)"
	MsgFlagPurge    = "Remove repositories that the manifest does not list"
	MsgFlagPull     = "Pull repositories that already exist"
	MsgFlagYes      = "Do not ask for confirmation"
	MsgStored       = "Stored %d repositories in %s\n"
)

// borg-helper
const (
	MsgBorgShort = "Run borg against a named repository"
	MsgBorgLong  = `borg-helper reads named repositories from a JSON config file and runs borg
with BORG_REPO, BORG_PASSPHRASE and BORG_RSH set for the chosen one.
Everything after the repository name is passed to borg unchanged, and
borg's exit code is returned.`
	MsgBorgListShort  = "List the configured repositories"
	MsgFlagBorgConfig = "Repository config file"
	MsgFlagBorgBinary = "borg binary"
)

// ffmpeg-chapters
const (
	MsgChaptersShort = "Convert a chapter list into ffmpeg metadata"
	MsgChaptersLong  = `ffmpeg-chapters reads lines of the form "H:MM:SS.mmm Title" from the given
files, or stdin, and prints ffmpeg metadata chapter blocks. Each chapter ends
where the next begins; the last line only marks the end of the previous
chapter.

  ffmpeg-chapters --header < chapters.txt > chapters.ffmeta
  ffmpeg -i in.mp4 -i chapters.ffmeta -map_metadata 1 -map_chapters 1 -codec copy out.mp4`
	MsgFlagHeader   = "Start the output with the ;FFMETADATA1 header"
	MsgUnparsedLine = "Unable to parse line: %s\n"
)

// news-dl
const (
	MsgNewsShort = "Download unread feed items with a shell command"
	MsgNewsLong  = `news-dl lists the unread items of one category of a Nextcloud News or Tiny
Tiny RSS account, downloads each with the configured download_command and
offers to mark it read.

The download command is run with sh -c after replacing {field} with the
item's field of that name, e.g. {url} for Nextcloud News or {link} for
Tiny Tiny RSS.`
	MsgNextcloudNewsShort = "Download unread Nextcloud News items with a shell command"
	MsgFlagNewsConfig     = "Config file"
)

// merged-dir-fs
const (
	MsgMergedShort = "Mount a directory tree as one flat read-only directory"
	MsgMergedLong  = `merged-dir-fs mounts a FUSE file system at mountpoint listing every file found
below source in a single directory. When two files share a name the one
found last wins. The mount is read-only; it stays up until interrupted.`
	MsgFlagAllowOther = "Allow other users to access the mount"
	MsgFlagFuseDebug  = "Log every FUSE request"
)

// play-random-sound
const (
	MsgSoundShort = "Play a random sound file from a directory"
	MsgSoundLong  = `play-random-sound picks a random file below a directory, avoiding the one it
played last, stops a sound it is still playing and plays the new one with
ffplay.`
	MsgFlagPlayer = "Player binary"
)
