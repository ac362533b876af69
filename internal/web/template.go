package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/nuc-led/internal/status"
)

// swatches maps driver colour names to CSS colours.
var swatches = map[string]string{
	"off":    "#222",
	"cyan":   "#0cc",
	"pink":   "#f6c",
	"yellow": "#ee0",
	"blue":   "#36f",
	"red":    "#e22",
	"green":  "#2c2",
	"white":  "#fff",
	"amber":  "#fa0",
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"swatch": func(colour string) template.CSS {
		if c, ok := swatches[colour]; ok {
			return template.CSS(c)
		}
		return template.CSS("#888")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>NUC LEDs</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.swatch { display: inline-block; width: 10px; height: 10px; border: 1px solid #999; margin-right: 6px; vertical-align: middle; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.error { color: red; }
</style>
</head>
<body>
<h1>NUC LEDs{{if .DarkMode}} (dark){{end}}</h1>

<h2>LEDs</h2>
<table>
<tr><th>LED</th><th>Colour</th><th>Style</th><th>Brightness</th></tr>
{{range .LEDs}}<tr id="led-{{.ID}}"{{if .IsOff}} class="off"{{end}}>
<td>{{.ID}}</td>
<td><span class="swatch" style="background: {{swatch .Colour}}"></span>{{.Colour}}</td>
<td>{{.Style}}</td>
<td>{{.Brightness}}%</td>
</tr>
{{else}}<tr><td colspan="4">no state read yet</td></tr>
{{end}}</table>

<h2>Driver</h2>
<table>
<tr><th>Path</th><td>{{.Config.DriverPath}}</td></tr>
<tr><th>Writes</th><td>{{.Writes}}</td></tr>
<tr><th>Errors</th><td>{{.Errors}}</td></tr>
{{if .LastError}}<tr><th>Last error</th><td class="error">{{.LastError}} ({{.LastErrorAt.UTC.Format "2006-01-02T15:04:05Z"}})</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Topic prefix</th><td>{{.Config.TopicPrefix}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Button</th><td>{{if lt .Config.ButtonPin 0}}disabled{{else}}line {{.Config.ButtonPin}}, {{.ButtonPresses}} presses{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/docs">API</a>{{if .Config.Metrics}} · <a href="/metrics">metrics</a>{{end}}</p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
