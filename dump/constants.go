package dump

// Header names used throughout the dump stream format.
const (
	VersionHeader           = "SVN-fs-dump-format-version"
	UUIDHeader              = "UUID"
	RevisionNumberHeader    = "Revision-number"
	PropContentLengthHeader = "Prop-content-length"
	TextContentLengthHeader = "Text-content-length"
	ContentLengthHeader     = "Content-length"

	NodePathHeader         = "Node-path"
	NodeKindHeader         = "Node-kind"
	NodeActionHeader       = "Node-action"
	NodeCopyfromRevHeader  = "Node-copyfrom-rev"
	NodeCopyfromPathHeader = "Node-copyfrom-path"

	TextCopySourceMd5Header  = "Text-copy-source-md5"
	TextCopySourceSha1Header = "Text-copy-source-sha1"
	TextContentMd5Header     = "Text-content-md5"
	TextContentSha1Header    = "Text-content-sha1"
)

// PropsEnd terminates a property block.
const PropsEnd = "PROPS-END"

// MinFormatVersion/MaxFormatVersion bound the dump versions this core
// understands. Format 1 predates Node-copyfrom-* support, which the
// Untangler depends on, so it is rejected just like the original tool's
// VALID_DUMP_FORMAT_VERSIONS gate.
const (
	MinFormatVersion = 2
	MaxFormatVersion = 3
)

// MarkerPropertyKey/MarkerPropertyValue mark a record as synthesized or
// rewritten by this tool, per spec section 4.10/6.
const (
	MarkerPropertyKey   = "svndumpfilter generated"
	MarkerPropertyValue = "True"
)
