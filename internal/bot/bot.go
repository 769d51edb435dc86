package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-planner/internal/model"
	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageCategory
	stageDate
	stageTime
	stageRepeat
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
	cbSeriesPrefix = "series:"
)

const (
	btnSkip             = "⏭️ Skip"
	btnToday            = "Today"
	btnTomorrow         = "Tomorrow"
	btnConfirm          = "✅ Confirm"
	btnCancel           = "↩️ Cancel"
	btnCancelDialog     = "⏪ Cancel input"
	defaultClock        = "09:00"
	menuLabelNewTask    = "➕ New task"
	menuLabelToday      = "📋 Today"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationRequest struct {
	taskID uuid.UUID
}

// listing remembers what a numbered list showed so /done 2 can resolve it.
type listing struct {
	day      *time.Time
	category string
	ids      []uuid.UUID
}

// Updater is the polling side of the Telegram API.
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot routes Telegram updates to the planner services.
type Bot struct {
	updates   Updater
	messenger *Messenger
	taskSvc   *service.TaskService
	agendaSvc *service.AgendaService
	loc       *time.Location
	now       func() time.Time
	log       *zap.Logger

	mu            sync.Mutex
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	listings      map[int64]listing
}

func New(updates Updater, messenger *Messenger, taskSvc *service.TaskService, agendaSvc *service.AgendaService, loc *time.Location, log *zap.Logger) *Bot {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		updates:       updates,
		messenger:     messenger,
		taskSvc:       taskSvc,
		agendaSvc:     agendaSvc,
		loc:           loc,
		now:           time.Now,
		log:           log.Named("bot"),
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		listings:      make(map[int64]listing),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.updates.GetUpdatesChan(updateConfig)

	b.log.Info("polling_started")

	go func() {
		<-ctx.Done()
		b.updates.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle_callback_failed", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle_message_failed", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() && msg.Command() == "start" {
		return b.handleStart(ctx, msg)
	}
	if allowed, err := b.authorize(ctx, chatID); !allowed {
		return err
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(chatID)
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "⏪ Task creation cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info("command", zap.Int64("chat_id", chatID), zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(chatID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(chatID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(chatID, "I did not get that. Send /newtask to add a task or /help for the command list.")
}

// authorize lets only the registered owner chat through.
func (b *Bot) authorize(ctx context.Context, chatID int64) (bool, error) {
	owner, ok := b.messenger.Owner(ctx)
	switch {
	case !ok:
		return false, b.messenger.SendText(chatID, "Send /start to register this chat as the planner owner.", nil)
	case owner != chatID:
		return false, b.messenger.SendText(chatID, "This planner already belongs to another chat.", nil)
	default:
		return true, nil
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "help":
		return b.handleHelp(chatID)
	case "newtask":
		return b.startNewTaskConversation(chatID)
	case "today":
		return b.handleToday(msg)
	case "tasks":
		return b.handleListAll(msg)
	case "done":
		return b.handleIndexed(ctx, msg, b.toggleTask)
	case "delete":
		return b.handleIndexed(ctx, msg, b.deleteTask)
	case "deleteseries":
		return b.handleIndexed(ctx, msg, b.askSeriesConfirmation)
	case "categories":
		return b.handleCategories(chatID)
	case "report":
		return b.sendText(chatID, b.agendaSvc.DailySummary(b.today(), strings.TrimSpace(msg.CommandArguments())))
	case "stop":
		if err := b.messenger.ClearOwner(ctx); err != nil {
			return err
		}
		return b.messenger.SendText(chatID, "👋 Chat unregistered. Reminders pause until someone sends /start.", tgbotapi.NewRemoveKeyboard(true))
	case "cancel":
		b.clearConversation(chatID)
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "⏪ Task creation cancelled.")
	default:
		return b.sendText(chatID, "Unsupported command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	owner, ok := b.messenger.Owner(ctx)
	if ok && owner != chatID {
		return b.messenger.SendText(chatID, "This planner already belongs to another chat.", nil)
	}
	if !ok {
		if err := b.messenger.SetOwner(ctx, chatID); err != nil {
			return err
		}
		b.log.Info("owner_registered", zap.Int64("chat_id", chatID))
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your to-do list and remind you on time.</b>\n\n%s", escape(name), helpText)
	return b.sendText(chatID, text)
}

const helpText = "Commands:\n" +
	"• /newtask — add a task step by step\n" +
	"• /today [YYYY-MM-DD] [category] — tasks for a day\n" +
	"• /tasks [category] — upcoming tasks\n" +
	"• /done &lt;n&gt; — toggle task n of the last list\n" +
	"• /delete &lt;n&gt; — delete task n\n" +
	"• /deleteseries &lt;n&gt; — delete every task of the same series\n" +
	"• /categories — categories in use\n" +
	"• /report [category] — today's agenda\n" +
	"• /stop — unregister this chat\n" +
	"• /cancel — cancel the current input"

func (b *Bot) handleHelp(chatID int64) error {
	return b.sendText(chatID, "ℹ️ <b>Help</b>\n"+helpText)
}

func (b *Bot) startNewTaskConversation(chatID int64) error {
	b.clearConfirmation(chatID)
	b.setConversation(chatID, &conversationState{stage: stageTitle})
	return b.messenger.SendText(chatID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	state := b.getConversation(chatID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.messenger.SendText(chatID, "The title cannot be empty. What should the task be called?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageCategory
		return b.messenger.SendText(chatID, "🏷 Pick a category or type a new one (or «Skip»).", categoryKeyboard(b.taskSvc.Categories()))
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		state.stage = stageDate
		return b.messenger.SendText(chatID, "📆 Which day? Use <code>2025-11-30</code>, «Today» or «Tomorrow».", dateKeyboard())
	case stageDate:
		day, err := parseDay(text, b.today())
		if err != nil {
			return b.messenger.SendText(chatID, "Cannot read that date. Use <code>2025-11-30</code>, «Today» or «Tomorrow».", dateKeyboard())
		}
		state.input.Date = day
		state.stage = stageTime
		return b.messenger.SendText(chatID, fmt.Sprintf("⏰ At what time? Use <code>HH:MM</code> («Skip» means %s).", defaultClock), skipKeyboard())
	case stageTime:
		raw := text
		if isSkipInput(raw) {
			raw = defaultClock
		}
		hour, minute, err := service.ParseClock(raw)
		if err != nil {
			return b.messenger.SendText(chatID, "Cannot read that time. Use <code>HH:MM</code>, for example <code>18:30</code>.", skipKeyboard())
		}
		y, m, d := state.input.Date.Date()
		state.input.Time = time.Date(y, m, d, hour, minute, 0, 0, b.loc)
		state.stage = stageRepeat
		return b.messenger.SendText(chatID, "🔁 Repeat it?", repeatKeyboard())
	case stageRepeat:
		repeat, err := validation.ParseRepeatOption(text)
		if isSkipInput(text) {
			repeat, err = model.RepeatNone, nil
		}
		if err != nil {
			return b.messenger.SendText(chatID, "Pick one of the options below.", repeatKeyboard())
		}
		state.input.Repeat = repeat
		err = b.finishTaskCreation(ctx, chatID, state.input)
		b.clearConversation(chatID)
		return err
	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "Dialog reset. Try again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input service.TaskInput) error {
	created, err := b.taskSvc.CreateTask(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}
	seed := created[0]

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(seed.Title)))
	summary.WriteString(fmt.Sprintf("• <b>When:</b> %s %s\n", seed.Date.Format("2006-01-02"), seed.Time.Format("15:04")))
	if seed.Category != "" {
		summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(seed.Category)))
	}
	if seed.RepeatOption != model.RepeatNone {
		last := created[len(created)-1]
		summary.WriteString(fmt.Sprintf("• <b>Repeat:</b> %s, %d more until %s\n", strings.ToLower(string(seed.RepeatOption)), len(created)-1, last.Date.Format("2006-01-02")))
	}

	if err := b.messenger.SendText(chatID, strings.TrimSpace(summary.String()), tgbotapi.NewRemoveKeyboard(true)); err != nil {
		return err
	}
	day := seed.Date
	return b.sendList(chatID, &day, "")
}

func (b *Bot) handleToday(msg *tgbotapi.Message) error {
	day := b.today()
	args := strings.Fields(msg.CommandArguments())
	if len(args) > 0 {
		if parsed, err := parseDay(args[0], day); err == nil {
			day = parsed
			args = args[1:]
		}
	}
	return b.sendList(msg.Chat.ID, &day, strings.Join(args, " "))
}

func (b *Bot) handleListAll(msg *tgbotapi.Message) error {
	return b.sendList(msg.Chat.ID, nil, strings.TrimSpace(msg.CommandArguments()))
}

// sendList shows a numbered list for one day, or every upcoming task when
// day is nil, with inline buttons per task.
func (b *Bot) sendList(chatID int64, day *time.Time, category string) error {
	now := b.now().In(b.loc)
	var tasks []model.Task
	if day != nil {
		tasks = b.taskSvc.ListForDay(*day, category)
	} else {
		for _, task := range b.taskSvc.ListAll(category) {
			if !task.Date.Before(b.today()) || model.SameDay(task.Date, now) {
				tasks = append(tasks, task)
			}
		}
	}

	var header string
	if day != nil {
		header = fmt.Sprintf("📋 <b>%s</b>", day.Format("Mon, 02 Jan 2006"))
	} else {
		header = "📋 <b>Upcoming tasks</b>"
	}
	if category != "" {
		header += fmt.Sprintf(" · <i>%s</i>", escape(category))
	}

	if len(tasks) == 0 {
		b.setListing(chatID, listing{day: day, category: category})
		return b.sendText(chatID, header+"\n— nothing here. Add a task with /newtask.")
	}

	text, markup, ids := renderList(header, tasks, day == nil, now)
	b.setListing(chatID, listing{day: day, category: category, ids: ids})
	return b.messenger.SendText(chatID, text, markup)
}

// Telegram rejects messages over 4096 characters; keep headroom for the footer.
const (
	maxListedTasks = 30
	maxListText    = 3800
)

// renderList numbers tasks and builds one button row per task. It stops at
// maxListedTasks or maxListText and says how many tasks were left out; only
// the listed tasks get ids, so /done n keeps matching the visible numbers.
func renderList(header string, tasks []model.Task, groupByDay bool, now time.Time) (string, tgbotapi.InlineKeyboardMarkup, []uuid.UUID) {
	var builder strings.Builder
	builder.WriteString(header + "\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	ids := make([]uuid.UUID, 0, min(len(tasks), maxListedTasks))
	var lastDay string
	for i, task := range tasks {
		n := i + 1
		var block string
		if key := task.Date.Format("2006-01-02"); groupByDay && key != lastDay {
			block = fmt.Sprintf("\n<b>%s</b>\n", task.Date.Format("Mon, 02 Jan"))
		}
		block += fmt.Sprintf("%d. %s", n, service.FormatAgendaLine(task, now))
		if i >= maxListedTasks || builder.Len()+len(block) > maxListText {
			builder.WriteString(fmt.Sprintf("\n…and %d more. Narrow the list with /today YYYY-MM-DD or a category.", len(tasks)-i))
			break
		}
		builder.WriteString(block)
		lastDay = task.Date.Format("2006-01-02")
		ids = append(ids, task.ID)

		toggleLabel := fmt.Sprintf("✅ %d · %s", n, shortTitle(task.Title, 18))
		if task.IsDone {
			toggleLabel = fmt.Sprintf("↩️ %d · %s", n, shortTitle(task.Title, 18))
		}
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, cbTogglePrefix+task.ID.String()),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID.String()),
		}
		if task.RepeatOption != model.RepeatNone {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑♻️", cbSeriesPrefix+task.ID.String()))
		}
		buttons = append(buttons, row)
	}
	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...), ids
}

// handleIndexed resolves "/cmd <n>" against the chat's last list.
func (b *Bot) handleIndexed(ctx context.Context, msg *tgbotapi.Message, action func(context.Context, int64, uuid.UUID) error) error {
	chatID := msg.Chat.ID
	n, err := parseListIndex(msg.CommandArguments())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Give the task number from the last list: /%s 2", msg.Command()))
	}
	current := b.getListing(chatID)
	if n > len(current.ids) {
		return b.sendText(chatID, "No task with that number. Show a list with /today or /tasks first.")
	}
	return action(ctx, chatID, current.ids[n-1])
}

func (b *Bot) toggleTask(ctx context.Context, chatID int64, id uuid.UUID) error {
	task, err := b.taskSvc.ToggleDone(ctx, id)
	if errors.Is(err, service.ErrTaskNotFound) {
		return b.sendText(chatID, "Task not found.")
	}
	if err != nil {
		return err
	}
	return b.refreshList(chatID, task.Date)
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, id uuid.UUID) error {
	task, err := b.taskSvc.Get(id)
	if errors.Is(err, service.ErrTaskNotFound) {
		return b.sendText(chatID, "Task not found.")
	}
	if err := b.taskSvc.DeleteTask(ctx, id); err != nil {
		return b.sendText(chatID, "Task not found.")
	}
	if err := b.sendText(chatID, fmt.Sprintf("🗑 Deleted «%s».", escape(shortTitle(task.Title, 40)))); err != nil {
		return err
	}
	return b.refreshList(chatID, task.Date)
}

func (b *Bot) askSeriesConfirmation(ctx context.Context, chatID int64, id uuid.UUID) error {
	task, err := b.taskSvc.Get(id)
	if err != nil {
		return b.sendText(chatID, "Task not found.")
	}
	b.setConfirmation(chatID, confirmationRequest{taskID: id})

	text := fmt.Sprintf("Delete every «%s» task", escape(shortTitle(task.Title, 40)))
	if task.Category != "" {
		text += fmt.Sprintf(" in %s", escape(task.Category))
	}
	text += fmt.Sprintf(" repeating %s, on all dates?", strings.ToLower(string(task.RepeatOption)))
	return b.messenger.SendText(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(chatID)
		removed, err := b.taskSvc.DeleteSeries(ctx, req.taskID)
		if errors.Is(err, service.ErrTaskNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		if err != nil {
			return err
		}
		return b.sendText(chatID, fmt.Sprintf("🗑 Deleted %d tasks of the series.", len(removed)))
	case isCancelInput(text):
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "Nothing deleted.")
	default:
		return b.messenger.SendText(chatID, "Confirm or cancel the series deletion.", confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	b.messenger.Ack(cb.ID, "")
	if allowed, err := b.authorize(ctx, chatID); !allowed {
		return err
	}

	data := cb.Data
	b.log.Debug("callback", zap.Int64("chat_id", chatID), zap.String("data", data))

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		id, err := parseTaskID(data, cbTogglePrefix)
		if err != nil {
			return nil
		}
		return b.toggleTask(ctx, chatID, id)
	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.deleteTask(ctx, chatID, id)
	case strings.HasPrefix(data, cbSeriesPrefix):
		id, err := parseTaskID(data, cbSeriesPrefix)
		if err != nil {
			return nil
		}
		return b.askSeriesConfirmation(ctx, chatID, id)
	default:
		return nil
	}
}

func (b *Bot) handleCategories(chatID int64) error {
	categories := b.taskSvc.Categories()
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet. They appear once a task uses one.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, name := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", escape(name)))
	}
	builder.WriteString("\nFilter with /today YYYY-MM-DD &lt;category&gt;.")
	return b.sendText(chatID, builder.String())
}

// SendDailyAgenda sends today's agenda to the owner chat.
func (b *Bot) SendDailyAgenda(ctx context.Context) error {
	chatID, ok := b.messenger.Owner(ctx)
	if !ok {
		return nil
	}
	return b.sendText(chatID, b.agendaSvc.DailySummary(b.now().In(b.loc), ""))
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelNewTask:
		return true, b.startNewTaskConversation(msg.Chat.ID)
	case menuLabelToday:
		day := b.today()
		return true, b.sendList(msg.Chat.ID, &day, "")
	case menuLabelCategories:
		return true, b.handleCategories(msg.Chat.ID)
	case menuLabelHelp:
		return true, b.handleHelp(msg.Chat.ID)
	default:
		return false, nil
	}
}

// refreshList re-sends the chat's last list, or the given day when none.
func (b *Bot) refreshList(chatID int64, day time.Time) error {
	current := b.getListing(chatID)
	if current.ids == nil && current.day == nil {
		return b.sendList(chatID, &day, "")
	}
	return b.sendList(chatID, current.day, current.category)
}

func (b *Bot) today() time.Time {
	y, m, d := b.now().In(b.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.loc)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.messenger.SendText(chatID, text, mainMenuKeyboard())
}

func (b *Bot) getConfirmation(chatID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[chatID]
	return req, ok
}

func (b *Bot) setConfirmation(chatID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[chatID] = req
}

func (b *Bot) clearConfirmation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, chatID)
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.conversations[chatID]
	return ok && state != nil && state.stage != stageNone
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}

func (b *Bot) setListing(chatID int64, l listing) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listings[chatID] = l
}

func (b *Bot) getListing(chatID int64) listing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listings[chatID]
}

func parseTaskID(data, prefix string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(data, prefix))
}

func parseListIndex(args string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("index must be positive")
	}
	return n, nil
}

// parseDay reads «today», «tomorrow» or a YYYY-MM-DD date in today's location.
func parseDay(text string, today time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(btnToday):
		return today, nil
	case strings.ToLower(btnTomorrow):
		return today.AddDate(0, 0, 1), nil
	}
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(text), today.Location())
}

func shortTitle(title string, maxLen int) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxLen {
		return string(runes)
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
