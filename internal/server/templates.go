package server

const tmplPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Recent Earthquakes</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; background: #0d1117; color: #c9d1d9; }
  header { display: flex; gap: 24px; align-items: center; padding: 10px 16px; border-bottom: 1px solid #30363d; }
  header h1 { font-size: 18px; margin: 0 auto 0 0; }
  button { background: #21262d; color: #c9d1d9; border: 1px solid #30363d; padding: 6px 12px; border-radius: 6px; cursor: pointer; }
  main { display: grid; grid-template-columns: 2fr 1fr; gap: 12px; padding: 12px; }
  #map { height: 75vh; border-radius: 6px; }
  #chart { background: #161b22; border-radius: 6px; }
  #status.error { color: #f85149; }
  .axis { fill: #8b949e; font-size: 11px; }
</style>
</head>
<body>
<header>
  <h1>Recent Earthquakes</h1>
  <span>Total earthquakes: <b id="total">0</b></span>
  <span>Last updated: <b id="last-updated">-</b></span>
  <span id="status">Loading...</span>
  <button id="refresh">Refresh</button>
</header>
<main>
  <div id="map"></div>
  <svg id="chart"></svg>
</main>
<script>
(function() {
  const tileURL = {{.TileURL}};
  const attribution = {{.Attribution}};
  const bounds = {{.Bounds}};
  const chartW = {{.ChartWidth}};
  const chartH = {{.ChartHeight}};
  const svgNS = "http://www.w3.org/2000/svg";

  const map = L.map("map", { maxBounds: bounds, maxBoundsViscosity: 1.0, minZoom: 2 }).setView([20, 0], 2);
  L.tileLayer(tileURL, { attribution: attribution, noWrap: true, bounds: bounds }).addTo(map);
  const layer = L.layerGroup().addTo(map);
  const circles = new Map();
  const rects = new Map();
  let generation = -1;
  let barGeneration = -1;
  let lastSeq = -1;

  const chart = document.getElementById("chart");
  chart.setAttribute("width", chartW);
  chart.setAttribute("height", chartH);
  chart.setAttribute("viewBox", "0 0 " + chartW + " " + chartH);

  function drawMarkers(snap) {
    if (snap.generation === generation && circles.size === snap.markers.length) {
      for (const m of snap.markers) {
        const c = circles.get(m.id);
        if (c) c.setStyle({ color: m.style.color, weight: m.style.weight });
      }
      return;
    }
    layer.clearLayers();
    circles.clear();
    for (const m of snap.markers) {
      const c = L.circle([m.lat, m.lon], {
        color: m.style.color, fillColor: m.style.fill_color, weight: m.style.weight,
        radius: m.style.radius, fillOpacity: 0.5
      }).bindPopup(m.popup);
      c.addTo(layer);
      circles.set(m.id, c);
    }
    generation = snap.generation;
  }

  function post(url) {
    return fetch(url, { method: "POST" }).then(r => r.ok ? r.json() : null).then(s => { if (s && s.markers) draw(s); });
  }

  function drawBars(snap) {
    // Restyle in place while the bar set is unchanged so the hovered rect
    // survives and does not fire mouseenter again.
    if (snap.generation === barGeneration && rects.size === snap.bars.length) {
      for (const b of snap.bars) {
        const r = rects.get(b.lower);
        if (r) r.setAttribute("fill", b.color);
      }
      return;
    }
    while (chart.firstChild) chart.removeChild(chart.firstChild);
    rects.clear();
    for (const b of snap.bars) {
      const rect = document.createElementNS(svgNS, "rect");
      rect.setAttribute("x", b.x);
      rect.setAttribute("y", b.y);
      rect.setAttribute("width", b.width);
      rect.setAttribute("height", b.height);
      rect.setAttribute("fill", b.color);
      rect.addEventListener("mouseenter", () => post("/api/buckets/" + b.lower + "/highlight"));
      rect.addEventListener("mouseleave", () => post("/api/buckets/" + b.lower + "/reset"));
      rect.addEventListener("click", () => {
        fetch("/api/buckets/" + b.lower).then(r => r.json()).then(d => { if (d.text) alert(d.text); });
      });
      chart.appendChild(rect);
      rects.set(b.lower, rect);

      const label = document.createElementNS(svgNS, "text");
      label.setAttribute("class", "axis");
      label.setAttribute("x", b.x + b.width / 2);
      label.setAttribute("y", chartH - 10);
      label.setAttribute("text-anchor", "middle");
      label.textContent = b.lower + "-" + (b.lower + 1);
      chart.appendChild(label);
    }
    barGeneration = snap.generation;
  }

  function draw(snap) {
    if (snap.seq < lastSeq) return;
    lastSeq = snap.seq;
    drawMarkers(snap);
    drawBars(snap);
    document.getElementById("total").textContent = snap.total;
    document.getElementById("last-updated").textContent = snap.last_updated || "-";
    const status = document.getElementById("status");
    status.textContent = snap.status;
    status.className = snap.status === "Error loading data" ? "error" : "";
  }

  document.getElementById("refresh").addEventListener("click", () => fetch("/api/refresh", { method: "POST" }));

  function connect() {
    const proto = location.protocol === "https:" ? "wss://" : "ws://";
    const ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = () => { lastSeq = -1; };
    ws.onmessage = ev => draw(JSON.parse(ev.data));
    ws.onclose = () => setTimeout(connect, 5000);
  }

  fetch("/api/snapshot").then(r => r.json()).then(draw);
  connect();
})();
</script>
</body>
</html>
`
