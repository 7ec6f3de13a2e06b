package server

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Dashboard serves the single-page view; it polls /data from the browser.
func (h *Handler) Dashboard(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return dashboardTmpl.Execute(c.Response(), nil)
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>HiLo Tracker</title>
<style>
 body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
 h1 { color: #6cf; }
 table { border-collapse: collapse; margin-top: 1em; }
 td, th { border: 1px solid #444; padding: 4px 10px; }
 .high { color: #f66; } .low { color: #6f6; }
 #prediction { font-size: 1.4em; margin: 0.5em 0; }
</style>
</head>
<body>
<h1>HiLo Tracker</h1>
<div id="prediction">loading…</div>
<div id="stats"></div>
<div id="hotcold"></div>
<table id="recent"><thead><tr><th>Issue</th><th>Number</th><th>Result</th><th>Color</th></tr></thead><tbody></tbody></table>
<script>
async function refresh() {
  const r = await fetch('/data');
  const d = await r.json();
  if (d.no_data) {
    document.getElementById('prediction').textContent = 'feed unavailable';
    return;
  }
  document.getElementById('prediction').textContent =
    'Next: ' + d.prediction + ' [' + d.strategy + '] — last: ' + d.outcome;
  document.getElementById('stats').textContent =
    'Wins ' + d.wins + ' / Losses ' + d.losses + ' / Accuracy ' + d.accuracy + '%';
  document.getElementById('hotcold').textContent =
    'Hot: ' + (d.hot || []).join(', ') + '   Cold: ' + (d.cold || []).join(', ');
  const tbody = document.querySelector('#recent tbody');
  tbody.innerHTML = '';
  for (const ev of d.last10 || []) {
    const tr = document.createElement('tr');
    const cls = ev.result === 'High' ? 'high' : 'low';
    tr.innerHTML = '<td>' + ev.issue.slice(-5) + '</td><td>' + ev.number +
      '</td><td class="' + cls + '">' + ev.result + '</td><td>' + ev.color + '</td>';
    tbody.appendChild(tr);
  }
}
refresh();
setInterval(refresh, 30000);
</script>
</body>
</html>
`))
