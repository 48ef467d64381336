package db

// Schema is idempotent, every statement can be re-run on an existing database.
const Schema = `
CREATE TABLE IF NOT EXISTS users
(
    id                   BIGSERIAL PRIMARY KEY,
    email                VARCHAR     NOT NULL UNIQUE,
    full_name            VARCHAR     NOT NULL DEFAULT '',
    password_hash        VARCHAR     NOT NULL DEFAULT '',
    onboarding_completed BOOLEAN     NOT NULL DEFAULT FALSE,
    last_logon_at        TIMESTAMPTZ,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles
(
    user_id    BIGINT PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
    full_name  VARCHAR     NOT NULL DEFAULT '',
    age        INTEGER,
    height_cm  DOUBLE PRECISION,
    height_ft  INTEGER,
    height_in  DOUBLE PRECISION,
    weight     DOUBLE PRECISION,
    gender     VARCHAR     NOT NULL DEFAULT '',
    goals      TEXT[]      NOT NULL DEFAULT '{}',
    units      VARCHAR     NOT NULL DEFAULT 'metric' CHECK (units IN ('metric', 'imperial')),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workouts
(
    id           BIGSERIAL PRIMARY KEY,
    user_id      BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    workout_date DATE        NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, workout_date)
);

CREATE TABLE IF NOT EXISTS exercises
(
    id         BIGSERIAL PRIMARY KEY,
    workout_id BIGINT      NOT NULL REFERENCES workouts (id) ON DELETE CASCADE,
    name       VARCHAR     NOT NULL,
    position   INTEGER     NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ix_exercises_workout_id ON exercises (workout_id);

CREATE TABLE IF NOT EXISTS sets
(
    id          BIGSERIAL PRIMARY KEY,
    exercise_id BIGINT      NOT NULL REFERENCES exercises (id) ON DELETE CASCADE,
    weight      DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (weight >= 0),
    reps        INTEGER     NOT NULL DEFAULT 0 CHECK (reps >= 0),
    rpe         DOUBLE PRECISION CHECK (rpe IS NULL OR (rpe >= 1 AND rpe <= 10)),
    position    INTEGER     NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ix_sets_exercise_id ON sets (exercise_id);

CREATE TABLE IF NOT EXISTS workout_plans
(
    id         BIGSERIAL PRIMARY KEY,
    user_id    BIGINT      NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE,
    name       VARCHAR     NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workout_plan_rows
(
    id            BIGSERIAL PRIMARY KEY,
    plan_id       BIGINT   NOT NULL REFERENCES workout_plans (id) ON DELETE CASCADE,
    day           SMALLINT NOT NULL CHECK (day BETWEEN 0 AND 6),
    exercise_name VARCHAR  NOT NULL,
    sets          INTEGER,
    reps          INTEGER,
    weight        DOUBLE PRECISION,
    position      INTEGER  NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS ix_workout_plan_rows_plan_id ON workout_plan_rows (plan_id);

CREATE TABLE IF NOT EXISTS exercise_catalog
(
    name VARCHAR PRIMARY KEY
);
CREATE INDEX IF NOT EXISTS ix_exercise_catalog_lower_name ON exercise_catalog (LOWER(name));

INSERT INTO exercise_catalog (name)
VALUES ('Bench Press'), ('Incline Bench Press'), ('Dumbbell Bench Press'), ('Overhead Press'),
       ('Back Squat'), ('Front Squat'), ('Deadlift'), ('Romanian Deadlift'), ('Barbell Row'),
       ('Pull Up'), ('Chin Up'), ('Lat Pulldown'), ('Seated Cable Row'), ('Dip'),
       ('Bicep Curl'), ('Hammer Curl'), ('Tricep Pushdown'), ('Skull Crusher'),
       ('Leg Press'), ('Leg Curl'), ('Leg Extension'), ('Calf Raise'), ('Hip Thrust'),
       ('Lateral Raise'), ('Face Pull'), ('Lunge'), ('Bulgarian Split Squat'), ('Plank')
ON CONFLICT (name) DO NOTHING;
`
