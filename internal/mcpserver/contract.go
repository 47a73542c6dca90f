package mcpserver

// CSVFormatContract describes the canonical CSV layout that bulk imports
// must follow and that exports produce.
const CSVFormatContract = `# Koyomi CSV Import Format

Bulk imports accept a CSV file with a header row. Exports produce the same
layout, so an exported file can be re-imported as-is.

## Columns

` + "```" + `csv
name,birthday,source,userBirthdayMessage
` + "```" + `

1. **name** — REQUIRED. The character's name.
2. **birthday** — REQUIRED. Month and day as ` + "`" + `MM-DD` + "`" + `. Single-digit
   parts are accepted (` + "`" + `7-7` + "`" + `) and normalized to the zero-padded
   form on import. Years are never stored.
3. **source** — OPTIONAL. The work the character appears in; doubles as the
   category used for filtering. Leading and trailing whitespace is trimmed.
4. **userBirthdayMessage** — REQUIRED. The greeting this character sends on
   the owner's birthday.

## Rules

1. Header names are matched case-insensitively; column order does not matter.
2. Rows are validated independently. A bad row is skipped and counted as
   rejected; the rest of the file still imports.
3. A row missing name, birthday, or userBirthdayMessage is rejected.
4. A birthday that does not match ` + "`" + `M-D` + "`" + ` through ` + "`" + `MM-DD` + "`" + ` is rejected.
5. Character images never travel through CSV; imported characters start
   without one.
6. Encoding is UTF-8.

## Example

` + "```" + `csv
name,birthday,source,userBirthdayMessage
Sakura Kinomoto,4-1,Cardcaptor Sakura,Happy birthday! Everything will surely be all right.
Rei Ayanami,03-30,Neon Genesis Evangelion,Congratulations.
` + "```" + `
`
