package web

import "html/template"

var pageFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var pageTemplate = template.Must(template.New("page").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Ember Dashboard</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #1e1f22; color: #dbdee1; }
  nav { background: #111214; padding: 12px 24px; }
  nav a { color: #e2725b; margin-right: 16px; text-decoration: none; font-weight: 600; }
  main { padding: 24px; max-width: 960px; }
  h1 { color: #e2725b; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #2b2d31; }
  input, button { background: #2b2d31; color: #dbdee1; border: 1px solid #3f4147; padding: 6px 10px; border-radius: 4px; }
  button { cursor: pointer; background: #e2725b; color: #111; font-weight: 600; }
  #log { background: #111214; padding: 12px; height: 480px; overflow-y: scroll; font-family: monospace; font-size: 13px; white-space: pre-wrap; }
  .stat { display: inline-block; background: #2b2d31; border-radius: 8px; padding: 16px 24px; margin: 0 12px 12px 0; }
  .stat b { display: block; font-size: 24px; color: #e2725b; }
</style>
</head>
<body>
<nav>
  <a href="/">Overview</a>
  <a href="/economy">Economy</a>
  <a href="/config">Config</a>
  <a href="/logs">Logs</a>
</nav>
<main>
{{block "content" .}}{{end}}
</main>
</body>
</html>`))

var overviewTemplate = template.Must(template.Must(pageTemplate.Clone()).Parse(`{{define "content"}}
<h1>Overview</h1>
<div class="stat"><b>{{.CommandCount}}</b>commands served</div>
<div class="stat"><b>{{.Wallets}}</b>wallets</div>
<div class="stat"><b>{{.TotalCoins}}</b>coins in circulation</div>
<div class="stat"><b>{{.AIRequests}}</b>AI requests</div>
<h2>Recent commands</h2>
<table>
<tr><th>When</th><th>User</th><th>Command</th></tr>
{{range .RecentCommands}}<tr><td>{{.CreatedAt.Format "15:04:05"}}</td><td>{{.UserID}}</td><td>/{{.Command}}</td></tr>{{end}}
</table>
{{end}}`))

var economyTemplate = template.Must(template.Must(pageTemplate.Clone()).Parse(`{{define "content"}}
<h1>Economy</h1>
<h2>Richest wallets</h2>
<table>
<tr><th>#</th><th>User</th><th>Coins</th></tr>
{{range $idx, $w := .Richest}}<tr><td>{{inc $idx}}</td><td>{{$w.UserID}}</td><td>{{$w.Coins}}</td></tr>{{end}}
</table>
{{end}}`))

var configTemplate = template.Must(template.Must(pageTemplate.Clone()).Parse(`{{define "content"}}
<h1>Config</h1>
<form method="POST" action="/config">
  <p><input name="key" placeholder="key" required>
  <input name="value" placeholder="value" required>
  <button type="submit">Save</button></p>
</form>
<table>
<tr><th>Key</th><th>Value</th></tr>
{{range $k, $v := .Values}}<tr><td>{{$k}}</td><td>{{$v}}</td></tr>{{end}}
</table>
{{end}}`))

var logsTemplate = template.Must(template.Must(pageTemplate.Clone()).Parse(`{{define "content"}}
<h1>Live Logs</h1>
<div id="log"></div>
<script>
const log = document.getElementById("log");
const proto = location.protocol === "https:" ? "wss" : "ws";
const ws = new WebSocket(proto + "://" + location.host + "/ws/logs");
ws.onmessage = (ev) => {
  log.textContent += ev.data + "\n";
  log.scrollTop = log.scrollHeight;
};
</script>
{{end}}`))
